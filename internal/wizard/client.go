package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inscricao/internal/enrollment/models"
	dErrors "inscricao/pkg/domain-errors"
)

// Client talks to the registration endpoints. It backs both the debounced
// checker (GET /check-cpf) and the final submission (POST /submit-inscricao).
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient trims a trailing slash off baseURL the way the form always did.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Check implements RemoteChecker against GET /check-cpf.
func (c *Client) Check(ctx context.Context, normalized string) (models.CheckResponse, error) {
	endpoint := c.baseURL + "/check-cpf?cpf=" + url.QueryEscape(normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.CheckResponse{}, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao verificar cpf")
	}
	res, err := c.http.Do(req)
	if err != nil {
		return models.CheckResponse{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "falha ao verificar cpf")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return models.CheckResponse{}, dErrors.New(dErrors.CodeUnavailable, remoteError(res, "falha ao verificar cpf"))
	}
	var out models.CheckResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return models.CheckResponse{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "resposta inválida do servidor")
	}
	return out, nil
}

// Submit implements Submitter against POST /submit-inscricao. Server
// rejections come back as coded errors so the wizard can tell a duplicate
// (terminal) from a transient fault (retryable).
func (c *Client) Submit(ctx context.Context, payload *models.SubmissionRequest) (*models.Enrollment, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao montar inscrição")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit-inscricao", bytes.NewReader(body))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao enviar inscrição")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "falha ao enviar inscrição")
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusCreated:
		var out models.SubmitResponse
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "resposta inválida do servidor")
		}
		return out.Data, nil
	case http.StatusConflict:
		return nil, dErrors.New(dErrors.CodeConflict, remoteError(res, "cpf já participou"))
	case http.StatusBadRequest:
		return nil, dErrors.New(dErrors.CodeInvalidInput, remoteError(res, "inscrição inválida"))
	default:
		return nil, dErrors.New(dErrors.CodeUnavailable, remoteError(res, fmt.Sprintf("erro %d ao enviar inscrição", res.StatusCode)))
	}
}

// remoteError extracts the server's error envelope when present, falling back
// to a generic message rather than leaking raw internals.
func remoteError(res *http.Response, fallback string) string {
	var envelope models.ErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return fallback
}
