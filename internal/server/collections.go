package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/technopolitica/loadouts/internal/domain"
)

type collectionProductsResponse struct {
	Items []domain.CollectionProductItem `json:"items"`
}

func loadoutPayloadFrom(w http.ResponseWriter, r *http.Request) (input domain.LoadoutInput, ok bool) {
	var payload loadoutPayload
	message, ok := decodePayload(r, &payload)
	if !ok {
		respondError(w, r, http.StatusBadRequest, domain.ApiErrorInvalidLoadout, message)
		return
	}
	input = payload.input(GetAuthInfo(r).UserID)
	if input.Title == "" {
		respondError(w, r, http.StatusBadRequest, domain.ApiErrorInvalidLoadout, "Title is required.")
		return input, false
	}
	if !domain.IsFixedCategorySlug(input.CategorySlug) {
		respondError(w, r, http.StatusBadRequest, domain.ApiErrorInvalidCategory, "Choose a category between cat-001 and cat-100.")
		return input, false
	}
	return input, true
}

func NewCollectionsRouter() *chi.Mux {
	collectionsRouter := chi.NewRouter()
	collectionsRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var kind domain.CollectionKind
		if rawKind := query.Get("kind"); rawKind != "" {
			var ok bool
			kind, ok = domain.ParseCollectionKind(rawKind)
			if !ok {
				badRequest(w, r, "kind: must be one of category, loadout")
				return
			}
		}
		limit, _ := strconv.Atoi(query.Get("limit"))
		collections, err := GetRepository(r).PublicCollections(r.Context(), kind, limit)
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load collections.")
			return
		}
		respond(w, r, http.StatusOK, collections)
	})
	collectionsRouter.With(requireCompleteUser).Post("/", func(w http.ResponseWriter, r *http.Request) {
		input, ok := loadoutPayloadFrom(w, r)
		if !ok {
			return
		}
		loadout, err := GetRepository(r).CreateLoadout(r.Context(), input)
		if err != nil {
			failure(w, r, err, domain.ApiErrorSaveFailed, "Failed to create loadout.")
			return
		}
		respond(w, r, http.StatusCreated, loadout)
	})

	collectionsRouter.Route("/{id}", func(collectionRouter chi.Router) {
		collectionRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
			detail, err := GetRepository(r).CollectionDetail(r.Context(), chi.URLParam(r, "id"), viewerID(r))
			if err != nil {
				failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load collection.")
				return
			}
			respond(w, r, http.StatusOK, detail)
		})
		collectionRouter.With(requireCompleteUser).Put("/", func(w http.ResponseWriter, r *http.Request) {
			input, ok := loadoutPayloadFrom(w, r)
			if !ok {
				return
			}
			loadout, err := GetRepository(r).UpdateLoadout(r.Context(), chi.URLParam(r, "id"), input)
			if err != nil {
				failure(w, r, err, domain.ApiErrorUpdateFailed, "Failed to update loadout.")
				return
			}
			respond(w, r, http.StatusOK, loadout)
		})
		collectionRouter.With(requireCompleteUser).Delete("/", func(w http.ResponseWriter, r *http.Request) {
			err := GetRepository(r).DeleteLoadout(r.Context(), chi.URLParam(r, "id"), GetAuthInfo(r).UserID)
			if err != nil {
				failure(w, r, err, domain.ApiErrorDeleteFailed, "Failed to delete loadout.")
				return
			}
			respondOK(w, r)
		})
		collectionRouter.Mount("/products", newCollectionProductsRouter())
	})
	return collectionsRouter
}

func newCollectionProductsRouter() *chi.Mux {
	productsRouter := chi.NewRouter()
	productsRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
		items, err := GetRepository(r).CollectionProducts(r.Context(), chi.URLParam(r, "id"), viewerID(r))
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load products.")
			return
		}
		respond(w, r, http.StatusOK, collectionProductsResponse{Items: items})
	})
	productsRouter.Group(func(ownerRouter chi.Router) {
		ownerRouter.Use(requireCompleteUser)
		ownerRouter.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var payload collectionProductPayload
			if message, ok := decodePayload(r, &payload); !ok {
				respondError(w, r, http.StatusBadRequest, domain.ApiErrorInvalidProduct, message)
				return
			}
			items, err := GetRepository(r).AddCollectionProduct(r.Context(), chi.URLParam(r, "id"), GetAuthInfo(r).UserID, payload.input())
			if err != nil {
				failure(w, r, err, domain.ApiErrorAddFailed, "Failed to add product.")
				return
			}
			respond(w, r, http.StatusCreated, collectionProductsResponse{Items: items})
		})
		ownerRouter.Put("/", func(w http.ResponseWriter, r *http.Request) {
			var payload reorderPayload
			if message, ok := decodePayload(r, &payload); !ok {
				respondError(w, r, http.StatusBadRequest, domain.ApiErrorInvalidItems, message)
				return
			}
			items, err := GetRepository(r).ReorderCollectionProducts(r.Context(), chi.URLParam(r, "id"), GetAuthInfo(r).UserID, payload.items())
			if err != nil {
				failure(w, r, err, domain.ApiErrorUpdateFailed, "Failed to reorder products.")
				return
			}
			respond(w, r, http.StatusOK, collectionProductsResponse{Items: items})
		})
		ownerRouter.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			items, err := GetRepository(r).RemoveCollectionProduct(r.Context(), chi.URLParam(r, "id"), GetAuthInfo(r).UserID, r.URL.Query().Get("productId"))
			if err != nil {
				failure(w, r, err, domain.ApiErrorDeleteFailed, "Failed to remove product.")
				return
			}
			respond(w, r, http.StatusOK, collectionProductsResponse{Items: items})
		})
	})
	return productsRouter
}
