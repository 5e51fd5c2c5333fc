package client

import (
	"context"
	"net/url"
	"time"

	"github.com/luciancaetano/aminokit"
)

const (
	adminOpHideUser      = 18
	adminOpUnhideUser    = 19
	adminOpDeleteMessage = 102
	adminOpHideObject    = 110

	adminValueHidden  = 9
	adminValueVisible = 0

	noticeWarning = 7
	noticeStrike  = 4
)

func (c *Client) adminOp(ctx context.Context, path string, op, value int, reason string) error {
	ndc, err := c.requireCommunity()
	if err != nil {
		return err
	}
	payload := map[string]any{
		"adminOpName":  op,
		"adminOpValue": value,
		"adminOpNote":  map[string]any{"content": reason},
	}
	return c.post(ctx, ndc, path+"/admin", payload, nil)
}

func userPath(uid string) string {
	return "/user-profile/" + url.PathEscape(uid)
}

func (c *Client) HideUser(ctx context.Context, uid, reason string) error {
	return c.adminOp(ctx, userPath(uid), adminOpHideUser, adminValueHidden, reason)
}

func (c *Client) UnhideUser(ctx context.Context, uid, reason string) error {
	return c.adminOp(ctx, userPath(uid), adminOpUnhideUser, adminValueVisible, reason)
}

func (c *Client) HideBlog(ctx context.Context, blogID, reason string) error {
	return c.adminOp(ctx, blogPath(blogID), adminOpHideObject, adminValueHidden, reason)
}

func (c *Client) UnhideBlog(ctx context.Context, blogID, reason string) error {
	return c.adminOp(ctx, blogPath(blogID), adminOpHideObject, adminValueVisible, reason)
}

func (c *Client) HideChat(ctx context.Context, threadID, reason string) error {
	return c.adminOp(ctx, threadPath(threadID), adminOpHideObject, adminValueHidden, reason)
}

func (c *Client) UnhideChat(ctx context.Context, threadID, reason string) error {
	return c.adminOp(ctx, threadPath(threadID), adminOpHideObject, adminValueVisible, reason)
}

// Warn sends a custom warning notice to a member.
func (c *Client) Warn(ctx context.Context, uid, reason string) error {
	return c.notice(ctx, uid, map[string]any{
		"title":       "Custom",
		"content":     reason,
		"penaltyType": 0,
		"noticeType":  noticeWarning,
	})
}

// Strike sends a strike notice that mutes the member for duration.
func (c *Client) Strike(ctx context.Context, uid string, duration time.Duration, title, reason string) error {
	return c.notice(ctx, uid, map[string]any{
		"title":        title,
		"content":      reason,
		"penaltyType":  1,
		"penaltyValue": int(duration / time.Second),
		"noticeType":   noticeStrike,
	})
}

func (c *Client) notice(ctx context.Context, uid string, fields map[string]any) error {
	ndc, err := c.requireCommunity()
	if err != nil {
		return err
	}
	payload := map[string]any{
		"uid": uid,
		"attachedObject": map[string]any{
			"objectId":   uid,
			"objectType": aminokit.ObjectUser,
		},
		"adminOpNote": map[string]any{},
	}
	for k, v := range fields {
		payload[k] = v
	}
	return c.post(ctx, ndc, "/notice", payload, nil)
}

// Ban bans a member from the selected community. reasonType is the service's
// ban category.
func (c *Client) Ban(ctx context.Context, uid, reason string, reasonType int) error {
	ndc, err := c.requireCommunity()
	if err != nil {
		return err
	}
	payload := map[string]any{
		"reasonType": reasonType,
		"note":       map[string]any{"content": reason},
	}
	return c.post(ctx, ndc, userPath(uid)+"/ban", payload, nil)
}

func (c *Client) Unban(ctx context.Context, uid, reason string) error {
	ndc, err := c.requireCommunity()
	if err != nil {
		return err
	}
	return c.post(ctx, ndc, userPath(uid)+"/unban", map[string]any{"note": map[string]any{"content": reason}}, nil)
}
