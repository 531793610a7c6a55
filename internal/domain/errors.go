package domain

import "encoding/json"

type ApiErrorCode string

const (
	ApiErrorUnauthorized        ApiErrorCode = "UNAUTHORIZED"
	ApiErrorForbidden           ApiErrorCode = "FORBIDDEN"
	ApiErrorProfileIncomplete   ApiErrorCode = "PROFILE_INCOMPLETE"
	ApiErrorNotFound            ApiErrorCode = "NOT_FOUND"
	ApiErrorBadRequest          ApiErrorCode = "BAD_REQUEST"
	ApiErrorFetchFailed         ApiErrorCode = "FETCH_FAILED"
	ApiErrorUpdateFailed        ApiErrorCode = "UPDATE_FAILED"
	ApiErrorSaveFailed          ApiErrorCode = "SAVE_FAILED"
	ApiErrorDeleteFailed        ApiErrorCode = "DELETE_FAILED"
	ApiErrorCheckFailed         ApiErrorCode = "CHECK_FAILED"
	ApiErrorSearchFailed        ApiErrorCode = "SEARCH_FAILED"
	ApiErrorTargetRequired      ApiErrorCode = "TARGET_REQUIRED"
	ApiErrorSelfFollow          ApiErrorCode = "SELF_FOLLOW"
	ApiErrorFollowFailed        ApiErrorCode = "FOLLOW_FAILED"
	ApiErrorUnfollowFailed      ApiErrorCode = "UNFOLLOW_FAILED"
	ApiErrorDisplayNameRequired ApiErrorCode = "DISPLAY_NAME_REQUIRED"
	ApiErrorUsernameImmutable   ApiErrorCode = "USERNAME_IMMUTABLE"
	ApiErrorTaken               ApiErrorCode = "TAKEN"
	ApiErrorConflict            ApiErrorCode = "CONFLICT"
	ApiErrorInvalidLoadout      ApiErrorCode = "INVALID_LOADOUT"
	ApiErrorInvalidCategory     ApiErrorCode = "INVALID_CATEGORY"
	ApiErrorInvalidProduct      ApiErrorCode = "INVALID_PRODUCT"
	ApiErrorProductNotFound     ApiErrorCode = "PRODUCT_NOT_FOUND"
	ApiErrorProductRequired     ApiErrorCode = "PRODUCT_REQUIRED"
	ApiErrorInvalidItems        ApiErrorCode = "INVALID_ITEMS"
	ApiErrorAddFailed           ApiErrorCode = "ADD_FAILED"
	ApiErrorInvalidComment      ApiErrorCode = "INVALID_COMMENT"
	ApiErrorLikeFailed          ApiErrorCode = "LIKE_FAILED"
)

type ApiError struct {
	Code    ApiErrorCode `json:"code"`
	Message string       `json:"message"`
	// RedirectTo is set when the caller must finish onboarding first.
	RedirectTo string `json:"redirectTo,omitempty"`
}

func (e ApiError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e ApiError) MarshalJSON() ([]byte, error) {
	type body ApiError
	return json.Marshal(struct {
		Error body `json:"error"`
	}{body(e)})
}
