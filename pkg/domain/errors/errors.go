package errors

import "errors"

var (
	// requested record is not found.
	ErrMissing = errors.New("not found")

	// requested record is found more than expected.
	ErrTooMuch = errors.New("too much")

	// the record conflicts with another one, or it has been changed concurrently.
	ErrConflict = errors.New("conflict")

	// the request is malformed or contradicts itself.
	ErrInvalidArgument = errors.New("invalid argument")

	// credentials are missing or wrong.
	//
	// Messages of this error should not tell which part of credentials is wrong.
	ErrUnauthorized = errors.New("unauthorized")

	// the caller is authenticated but not permitted.
	ErrForbidden = errors.New("forbidden")

	// status transition of a job violates its lifecycle.
	ErrInvalidJobStateChanging = errors.New("cannot change job status")

	// an input file of a new job is not found in the project.
	ErrInputFileMissing = errors.New("input file is missing")

	// neither the workspace nor the server designates a compute resource.
	ErrNoComputeResource = errors.New("no compute resource")

	// size of a remote output can not be determined.
	ErrSizeUnavailable = errors.New("size of remote content is unavailable")
)
