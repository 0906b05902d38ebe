// Package unstructured extracts plain text from binary documents (PDF,
// DOCX, ...) through the Unstructured partition API. Chunking stays out
// of here; the extractor returns one paragraph per document element and
// the chunker decides the boundaries.
package unstructured

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

type Extractor struct {
	baseURL    string
	httpClient *http.Client
}

type element struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewExtractor(baseURL string, c *http.Client) *Extractor {
	if c == nil {
		c = http.DefaultClient
	}
	return &Extractor{
		baseURL:    baseURL,
		httpClient: c,
	}
}

// ExtractText partitions the document and joins the element texts into
// paragraph-separated plain text.
func (e *Extractor) ExtractText(ctx context.Context, filename string, content []byte) (string, error) {
	var requestBody bytes.Buffer
	multipartWriter := multipart.NewWriter(&requestBody)

	fileWriter, err := multipartWriter.CreateFormFile("files", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %v", err)
	}
	if _, err = io.Copy(fileWriter, bytes.NewReader(content)); err != nil {
		return "", fmt.Errorf("failed to write file content: %v", err)
	}

	if err := multipartWriter.WriteField("output_format", "application/json"); err != nil {
		return "", fmt.Errorf("failed to write output format: %v", err)
	}
	multipartWriter.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/general/v0/general", &requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", multipartWriter.FormDataContentType())

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("extraction service error: %s: %s", resp.Status, string(body))
	}

	var elements []element
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return "", fmt.Errorf("failed to parse response: %v", err)
	}

	parts := make([]string, 0, len(elements))
	for _, el := range elements {
		if text := strings.TrimSpace(el.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
