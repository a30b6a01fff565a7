package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/gin-gonic/gin"
)

var (
	errMissingSecret = errors.New("authentication is not configured")
	errMissingToken  = errors.New("missing bearer token")
	errInvalidToken  = errors.New("invalid token")
)

type issueResponse struct {
	Ordinal int               `json:"ordinal"`
	Name    string            `json:"name,omitempty"`
	Reason  domain.AgeVerdict `json:"reason"`
	Age     *int              `json:"age,omitempty"`
	Message string            `json:"message"`
}

type errorResponse struct {
	Error  string          `json:"error"`
	Kind   string          `json:"kind"`
	Issues []issueResponse `json:"issues,omitempty"`
	Report string          `json:"report,omitempty"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindStateConflict:
		return http.StatusConflict
	case domain.KindUpstream:
		return http.StatusBadGateway
	case domain.KindPaymentIncomplete:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	resp := errorResponse{Error: err.Error(), Kind: string(kind)}
	if kind == domain.KindInternal {
		_ = c.Error(err)
		resp.Error = "internal error"
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) && len(verr.Issues) > 0 {
		for _, issue := range verr.Issues {
			resp.Issues = append(resp.Issues, issueResponse{
				Ordinal: issue.Ordinal,
				Name:    issue.Name,
				Reason:  issue.Reason,
				Age:     issue.Age,
				Message: issue.Message(),
			})
		}
		resp.Report = verr.Report()
	}
	c.JSON(statusFor(kind), resp)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Kind: string(domain.KindValidation)})
}
