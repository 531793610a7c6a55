package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/technopolitica/loadouts/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	err := validate.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		return domain.IsWebURL(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// decodePayload reads a JSON body into payload and validates it. The returned
// message is suitable for clients.
func decodePayload(r *http.Request, payload any) (message string, ok bool) {
	err := render.DecodeJSON(r.Body, payload)
	if err != nil {
		return "Request body is not valid JSON.", false
	}
	err = validate.Struct(payload)
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fields = append(fields, fmt.Sprintf("%s: failed %s", fieldErr.Field(), fieldErr.Tag()))
		}
		return strings.Join(fields, "; "), false
	}
	if err != nil {
		return "Request body is invalid.", false
	}
	return "", true
}

type usernameAvailabilityPayload struct {
	Username string `json:"username"`
}

type profileSetupPayload struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName" validate:"max=80"`
}

type profileUpdatePayload struct {
	DisplayName string   `json:"displayName" validate:"max=80"`
	Bio         string   `json:"bio" validate:"max=500"`
	AvatarURL   string   `json:"avatarUrl" validate:"omitempty,weburl"`
	Interests   []string `json:"interests" validate:"max=50,dive,max=40"`
}

type followPayload struct {
	TargetHandle string `json:"targetHandle"`
}

type markReadPayload struct {
	IDs []string `json:"ids" validate:"max=100,dive,uuid"`
}

type loadoutPayload struct {
	Title        string `json:"title" validate:"required,max=120"`
	Description  string `json:"description" validate:"max=2000"`
	CategorySlug string `json:"categorySlug" validate:"required"`
	CoverImage   string `json:"coverImage" validate:"omitempty,weburl"`
	IsPublic     *bool  `json:"isPublic"`
}

func (payload loadoutPayload) input(ownerID string) domain.LoadoutInput {
	isPublic := true
	if payload.IsPublic != nil {
		isPublic = *payload.IsPublic
	}
	return domain.LoadoutInput{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(payload.Title),
		Description:  strings.TrimSpace(payload.Description),
		CategorySlug: domain.NormalizeCategorySlug(payload.CategorySlug),
		CoverImage:   strings.TrimSpace(payload.CoverImage),
		IsPublic:     isPublic,
	}
}

type collectionProductPayload struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name" validate:"max=200"`
	Brand       string `json:"brand" validate:"max=120"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,weburl"`
	ProductURL  string `json:"productUrl" validate:"omitempty,weburl"`
	SourceURL   string `json:"sourceUrl" validate:"omitempty,weburl"`
	Note        string `json:"note" validate:"max=500"`
}

func (payload collectionProductPayload) input() domain.CollectionProductInput {
	return domain.CollectionProductInput{
		ProductID:   strings.TrimSpace(payload.ProductID),
		Name:        strings.TrimSpace(payload.Name),
		Brand:       strings.TrimSpace(payload.Brand),
		Description: strings.TrimSpace(payload.Description),
		ImageURL:    strings.TrimSpace(payload.ImageURL),
		ProductURL:  strings.TrimSpace(payload.ProductURL),
		SourceURL:   strings.TrimSpace(payload.SourceURL),
		Note:        strings.TrimSpace(payload.Note),
	}
}

type reorderPayload struct {
	Items []struct {
		ProductID string `json:"productId"`
		Note      string `json:"note" validate:"max=500"`
	} `json:"items" validate:"dive"`
}

func (payload reorderPayload) items() []domain.ReorderItem {
	items := make([]domain.ReorderItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, domain.ReorderItem{ProductID: item.ProductID, Note: item.Note})
	}
	return items
}

type likePayload struct {
	CollectionID string `json:"collectionId"`
}

type commentPayload struct {
	CollectionID string `json:"collectionId"`
	Body         string `json:"body"`
}

type commentUpdatePayload struct {
	Body string `json:"body"`
}
