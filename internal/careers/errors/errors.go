package errors

import "errors"

var (
	ErrInvalidForm = errors.New("invalid application form")

	ErrResumeRequired = errors.New("resume is required")

	ErrResumeType = errors.New("resume must be a PDF, DOC or DOCX file")

	ErrResumeTooLarge = errors.New("resume is too large")

	ErrSubmitFailed = errors.New("failed to submit application")
)
