package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the external document-intelligence service. Generation
// endpoints only acknowledge acceptance; results arrive out-of-band on the
// callback route.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("document-intelligence base URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type uploadResponse struct {
	Message         string `json:"message"`
	PDFName         string `json:"pdf_name"`
	ChunksProcessed int    `json:"chunks_processed"`
}

type generateResponse struct {
	Message string `json:"message"`
	PDFName string `json:"pdf_name"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// UploadPDF streams a document to the ingestion endpoint. It satisfies the
// documents.Forwarder interface.
func (c *Client) UploadPDF(ctx context.Context, orgID, fileName string, r io.Reader) (string, int, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-pdf", pr)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Org-Id", orgID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, fmt.Errorf("%w: upload returned %d: %s", ErrExternalService, resp.StatusCode, readDetail(resp.Body))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, fmt.Errorf("%w: invalid upload response: %v", ErrExternalService, err)
	}
	if out.PDFName == "" {
		out.PDFName = fileName
	}
	return out.PDFName, out.ChunksProcessed, nil
}

// Generate asks the external service to start a generation of the given kind
// for an already-ingested document. A nil error means the request was
// accepted, not that generation succeeded.
func (c *Client) Generate(ctx context.Context, kind, pdfName, deviceID, orgID string) error {
	if !ValidKind(kind) {
		return ErrInvalidKind
	}

	endpoint := c.baseURL + "/generate-" + kind + "/" + url.PathEscape(pdfName)
	if deviceID != "" {
		endpoint += "?device_id=" + url.QueryEscape(deviceID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Org-Id", orgID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: generate %s returned %d: %s", ErrExternalService, kind, resp.StatusCode, readDetail(resp.Body))
	}

	var out generateResponse
	// Tolerate empty acknowledgement bodies.
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return nil
}

// Health checks upstream availability.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", ErrExternalService, resp.StatusCode)
	}
	return nil
}

func readDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return "no detail"
	}
	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return strings.TrimSpace(string(body))
}
