// Package validation turns decoded request bodies into validated domain
// inputs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aquaroute/aquaroute-api/app/models"
	"github.com/aquaroute/aquaroute-api/internal/pkg/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct runs tag validation on s and maps failures to an unprocessable error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Unprocessable("invalid request body")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperr.Unprocessable("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// ReportCreate validates a report submission. A missing coordinate is
// unprocessable. An absent severity becomes Medium; a present one outside
// the known set, including "", is invalid.
func ReportCreate(req models.ReportCreateRequest) (models.ReportInput, error) {
	if err := Struct(req); err != nil {
		return models.ReportInput{}, err
	}

	severity := models.DefaultSeverity
	if req.Severity != nil {
		s, ok := models.ParseSeverity(*req.Severity)
		if !ok {
			return models.ReportInput{}, apperr.Invalid("Invalid severity level")
		}
		severity = s
	}

	return models.ReportInput{
		Lat:      *req.Lat,
		Lng:      *req.Lng,
		Severity: severity,
		Image:    req.Image,
	}, nil
}

// CommentCreate validates a comment. Text length is counted in characters,
// not bytes. A missing or blank author becomes Anonymous.
func CommentCreate(req models.CommentCreateRequest) (models.CommentInput, error) {
	if err := Struct(req); err != nil {
		return models.CommentInput{}, err
	}

	author := models.DefaultAuthor
	if req.Author != nil && strings.TrimSpace(*req.Author) != "" {
		author = *req.Author
	}
	return models.CommentInput{Text: *req.Text, Author: author}, nil
}

// Vote returns the parsed direction. A missing vote_type is unprocessable,
// an unknown one is invalid.
func Vote(req models.VoteRequest) (models.VoteDirection, error) {
	if err := Struct(req); err != nil {
		return "", err
	}
	d, ok := models.ParseVoteDirection(*req.VoteType)
	if !ok {
		return "", apperr.Invalid("Invalid vote type")
	}
	return d, nil
}

func StatusCheckCreate(req models.StatusCheckCreateRequest) (string, error) {
	if err := Struct(req); err != nil {
		return "", err
	}
	return *req.ClientName, nil
}
