package client

import (
	"context"
	"net/url"

	"github.com/luciancaetano/aminokit"
)

const sourceUserProfile = "UserProfileView"

// GetAccountInfo returns the global account of the session.
func (c *Client) GetAccountInfo(ctx context.Context) (*aminokit.Account, error) {
	var resp struct {
		Account aminokit.Account `json:"account"`
	}
	if err := c.get(ctx, aminokit.GlobalNdcID, "/account", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Account, nil
}

// GetUserInfo returns a user profile in the selected community.
func (c *Client) GetUserInfo(ctx context.Context, uid string) (*aminokit.UserProfile, error) {
	var resp struct {
		Profile aminokit.UserProfile `json:"userProfile"`
	}
	if err := c.get(ctx, c.NdcID(), userPath(uid), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}

func (c *Client) GetUserFollowers(ctx context.Context, uid string, start, size int) ([]aminokit.UserProfile, error) {
	var resp struct {
		Profiles []aminokit.UserProfile `json:"userProfileList"`
	}
	if err := c.get(ctx, c.NdcID(), userPath(uid)+"/member", paging(start, size), &resp); err != nil {
		return nil, err
	}
	return resp.Profiles, nil
}

func (c *Client) Follow(ctx context.Context, uid string) error {
	return c.post(ctx, c.NdcID(), userPath(uid)+"/member", nil, nil)
}

func (c *Client) Unfollow(ctx context.Context, uid string) error {
	auid, err := c.requireLogin()
	if err != nil {
		return err
	}
	return c.delete(ctx, c.NdcID(), userPath(uid)+"/member/"+auid, nil)
}

func (c *Client) Block(ctx context.Context, uid string) error {
	return c.post(ctx, c.NdcID(), "/block/"+url.PathEscape(uid), map[string]any{}, nil)
}

func (c *Client) Unblock(ctx context.Context, uid string) error {
	return c.delete(ctx, c.NdcID(), "/block/"+url.PathEscape(uid), nil)
}

// ProfileEdit lists the profile fields to change; empty fields are left as is.
type ProfileEdit struct {
	Nickname        string
	Content         string
	Icon            string
	BackgroundColor string
	BackgroundImage string
}

// EditProfile updates the session's profile in the selected community.
func (c *Client) EditProfile(ctx context.Context, edit ProfileEdit) error {
	auid, err := c.requireLogin()
	if err != nil {
		return err
	}

	payload := map[string]any{
		"address":     nil,
		"latitude":    0,
		"longitude":   0,
		"mediaList":   nil,
		"eventSource": sourceUserProfile,
	}
	if edit.Nickname != "" {
		payload["nickname"] = edit.Nickname
	}
	if edit.Content != "" {
		payload["content"] = edit.Content
	}
	if edit.Icon != "" {
		payload["icon"] = edit.Icon
	}

	style := map[string]any{}
	if edit.BackgroundColor != "" {
		style["backgroundColor"] = edit.BackgroundColor
	}
	if edit.BackgroundImage != "" {
		style["backgroundMediaList"] = []aminokit.MediaItem{{Type: aminokit.MediaImage, URL: edit.BackgroundImage}}
	}
	if len(style) > 0 {
		payload["extensions"] = map[string]any{"style": style}
	}

	return c.post(ctx, c.NdcID(), "/user-profile/"+auid, payload, nil)
}
