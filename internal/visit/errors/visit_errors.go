package visiterrors

import (
	"net/http"

	"go-fieldtrack/internal/shared/apperror"
)

var (
	ErrPhotoRequired = apperror.New(
		"PHOTO_REQUIRED",
		"A visit photo is required",
		http.StatusBadRequest,
	)
	ErrUploadFailed = apperror.New(
		apperror.CodeUploadFailed,
		"Could not upload visit photo",
		http.StatusBadGateway,
	)
	ErrPersistFailed = apperror.New(
		apperror.CodePersistFailed,
		"Could not save visit record",
		http.StatusInternalServerError,
	)
)
