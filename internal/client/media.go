package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/luciancaetano/aminokit"
	"github.com/luciancaetano/aminokit/internal/transport"
)

// UploadMedia uploads a file and returns its media URL, for use in profile
// icons, blog media lists and embeds.
func (c *Client) UploadMedia(ctx context.Context, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = aminokit.ContentTypeJPG
	}
	body, err := c.requester.Do(ctx, transport.Request{
		Method:      http.MethodPost,
		NdcID:       aminokit.GlobalNdcID,
		Path:        "/media/upload",
		Body:        data,
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		MediaValue string `json:"mediaValue"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return resp.MediaValue, nil
}
