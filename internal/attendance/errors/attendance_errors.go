package attendanceerrors

import (
	"net/http"

	"go-fieldtrack/internal/shared/apperror"
)

var (
	// Expected domain outcome, not a failure: the employee is simply done
	// for the day.
	ErrAlreadyCheckedIn = apperror.New(
		"ALREADY_CHECKED_IN",
		"Already checked in for today",
		http.StatusConflict,
	)
	ErrPersistFailed = apperror.New(
		apperror.CodePersistFailed,
		"Could not save attendance record",
		http.StatusInternalServerError,
	)
)
