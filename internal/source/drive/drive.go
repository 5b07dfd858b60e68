// Package drive lists and downloads PDF documents from a Google Drive
// folder.
package drive

import (
	"context"
	"fmt"
	"io"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const pdfMimeType = "application/pdf"

// PDFFile is the Drive metadata the pipeline needs per document.
type PDFFile struct {
	ID          string
	Name        string
	WebViewLink string
}

// Client wraps the Drive API for read-only folder access.
type Client struct {
	svc *gdrive.Service
}

// NewClient builds a Drive client from a service account credentials
// file. An empty path falls back to application default credentials.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	opts := []option.ClientOption{option.WithScopes(gdrive.DriveReadonlyScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListPDFs returns all non-trashed PDF files directly under folderID.
func (c *Client) ListPDFs(ctx context.Context, folderID string) ([]PDFFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false and mimeType='%s'", folderID, pdfMimeType)

	var files []PDFFile
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Spaces("drive").
			Fields("nextPageToken, files(id, name, webViewLink)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list folder %s: %w", folderID, err)
		}
		for _, f := range res.Files {
			files = append(files, PDFFile{ID: f.Id, Name: f.Name, WebViewLink: f.WebViewLink})
		}
		if res.NextPageToken == "" {
			return files, nil
		}
		pageToken = res.NextPageToken
	}
}

// Download fetches the raw bytes of a file.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}
