package client

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/luciancaetano/aminokit"
)

func blogPath(blogID string) string {
	return "/blog/" + url.PathEscape(blogID)
}

func (c *Client) GetBlogInfo(ctx context.Context, blogID string) (*aminokit.Blog, error) {
	var resp struct {
		Blog aminokit.Blog `json:"blog"`
	}
	if err := c.get(ctx, c.NdcID(), blogPath(blogID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Blog, nil
}

// GetBlogComments lists the comments of a blog, newest first.
func (c *Client) GetBlogComments(ctx context.Context, blogID string, start, size int) ([]aminokit.Comment, error) {
	query := paging(start, size)
	query.Set("sort", "newest")

	var resp struct {
		Comments []aminokit.Comment `json:"commentList"`
	}
	if err := c.get(ctx, c.NdcID(), blogPath(blogID)+"/comment", query, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

// BlogPost is a blog to publish.
type BlogPost struct {
	Title      string
	Content    string
	Images     []string
	Categories []string
	// BackgroundColor is a hex color such as "#000000".
	BackgroundColor string
}

// PostBlog publishes a blog in the selected community.
func (c *Client) PostBlog(ctx context.Context, post BlogPost) (*aminokit.Blog, error) {
	ndc, err := c.requireCommunity()
	if err != nil {
		return nil, err
	}

	extensions := map[string]any{}
	if post.BackgroundColor != "" {
		extensions["style"] = map[string]any{"backgroundColor": post.BackgroundColor}
	}

	payload := map[string]any{
		"address":     nil,
		"content":     post.Content,
		"title":       post.Title,
		"extensions":  extensions,
		"latitude":    0,
		"longitude":   0,
		"eventSource": "GlobalComposeMenu",
	}
	if len(post.Images) > 0 {
		media := make([]aminokit.MediaItem, 0, len(post.Images))
		for _, img := range post.Images {
			media = append(media, aminokit.MediaItem{Type: aminokit.MediaImage, URL: img})
		}
		payload["mediaList"] = media
	}
	if len(post.Categories) > 0 {
		payload["taggedBlogCategoryIdList"] = post.Categories
	}

	var resp struct {
		Blog aminokit.Blog `json:"blog"`
	}
	if err := c.post(ctx, ndc, "/blog", payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Blog, nil
}

func (c *Client) DeleteBlog(ctx context.Context, blogID string) error {
	return c.delete(ctx, c.NdcID(), blogPath(blogID), nil)
}

func (c *Client) LikeBlog(ctx context.Context, blogID string) error {
	payload := map[string]any{
		"value":       4,
		"eventSource": sourceUserProfile,
	}
	return c.postQuery(ctx, c.NdcID(), blogPath(blogID)+"/g-vote", url.Values{"cv": {"1.2"}}, payload, nil)
}

func (c *Client) UnlikeBlog(ctx context.Context, blogID string) error {
	return c.delete(ctx, c.NdcID(), blogPath(blogID)+"/g-vote", url.Values{"eventSource": {sourceUserProfile}})
}

// CommentBlog comments on a blog, or answers the comment replyTo when set.
func (c *Client) CommentBlog(ctx context.Context, blogID, content, replyTo string) (*aminokit.Comment, error) {
	payload := map[string]any{
		"content":     content,
		"stickerId":   nil,
		"type":        0,
		"eventSource": "PostDetailView",
	}
	if replyTo != "" {
		payload["respondTo"] = replyTo
	}

	var resp struct {
		Comment aminokit.Comment `json:"comment"`
	}
	if err := c.post(ctx, c.NdcID(), blogPath(blogID)+"/g-comment", payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Comment, nil
}

func (c *Client) DeleteBlogComment(ctx context.Context, blogID, commentID string) error {
	return c.delete(ctx, c.NdcID(), blogPath(blogID)+"/g-comment/"+url.PathEscape(commentID), nil)
}

// SendCoinsToBlog tips a blog. Every tip carries a fresh transaction id.
func (c *Client) SendCoinsToBlog(ctx context.Context, blogID string, coins int) error {
	payload := map[string]any{
		"coins":          coins,
		"tippingContext": map[string]any{"transactionId": uuid.NewString()},
	}
	return c.post(ctx, c.NdcID(), blogPath(blogID)+"/tipping", payload, nil)
}
