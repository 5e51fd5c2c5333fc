package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/luciancaetano/aminokit"
)

const communityLinkPrefix = "https://aminoapps.com/c/"

// SetCommunity selects the community later calls are routed to; 0 selects
// the global API.
func (c *Client) SetCommunity(ndcID int) {
	c.ndcID.Store(int64(ndcID))
}

// SetCommunityByAminoID resolves a community link or Amino id and selects it.
func (c *Client) SetCommunityByAminoID(ctx context.Context, aminoID string) error {
	if aminoID == "" {
		return aminokit.ErrNoCommunity
	}
	link := aminoID
	if !strings.Contains(link, communityLinkPrefix) {
		link = communityLinkPrefix + aminoID
	}

	info, err := c.GetLinkInfo(ctx, link)
	if err != nil {
		return err
	}
	if info.Community == nil || info.Community.NdcID == 0 {
		return fmt.Errorf("%w: %s does not resolve to a community", aminokit.ErrNoCommunity, aminoID)
	}
	c.SetCommunity(info.Community.NdcID)
	return nil
}

// GetCommunityInfo returns the selected community. Community info is served
// from the global route of that community.
func (c *Client) GetCommunityInfo(ctx context.Context) (*aminokit.Community, error) {
	ndc, err := c.requireCommunity()
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"withInfluencerList":          {"1"},
		"withTopicList":               {"true"},
		"influencerListOrderStrategy": {"fansCount"},
	}
	var resp struct {
		Community aminokit.Community `json:"community"`
	}
	if err := c.get(ctx, -ndc, "/community/info", query, &resp); err != nil {
		return nil, err
	}
	return &resp.Community, nil
}

// GetAccountCommunities lists the communities the session has joined.
func (c *Client) GetAccountCommunities(ctx context.Context, start, size int) ([]aminokit.Community, error) {
	query := paging(start, size)
	query.Set("v", "1")

	var resp struct {
		Communities []aminokit.Community `json:"communityList"`
	}
	if err := c.get(ctx, aminokit.GlobalNdcID, "/community/joined", query, &resp); err != nil {
		return nil, err
	}
	return resp.Communities, nil
}

// GetLinkInfo resolves a share link.
func (c *Client) GetLinkInfo(ctx context.Context, link string) (*aminokit.LinkInfo, error) {
	var resp struct {
		LinkInfo struct {
			Extensions struct {
				Community *aminokit.Community `json:"community"`
				LinkInfo  aminokit.LinkInfo   `json:"linkInfo"`
			} `json:"extensions"`
		} `json:"linkInfoV2"`
	}
	if err := c.get(ctx, aminokit.GlobalNdcID, "/link-resolution", url.Values{"q": {link}}, &resp); err != nil {
		return nil, err
	}

	info := resp.LinkInfo.Extensions.LinkInfo
	info.Community = resp.LinkInfo.Extensions.Community
	if info.NdcID == 0 && info.Community != nil {
		info.NdcID = info.Community.NdcID
	}
	return &info, nil
}

// JoinCommunity joins the selected community, with an invitation code for
// invite-only communities.
func (c *Client) JoinCommunity(ctx context.Context, invitationCode string) error {
	ndc, err := c.requireCommunity()
	if err != nil {
		return err
	}

	payload := map[string]any{}
	if invitationCode != "" {
		var resp struct {
			Invitation struct {
				ID string `json:"invitationId"`
			} `json:"invitation"`
		}
		query := url.Values{"q": {"http://aminoapps.com/invite/" + invitationCode}}
		if err := c.get(ctx, ndc, "/community/link-identify", query, &resp); err != nil {
			return err
		}
		payload["invitationId"] = resp.Invitation.ID
	}
	return c.post(ctx, ndc, "/community/join", payload, nil)
}

func (c *Client) LeaveCommunity(ctx context.Context) error {
	ndc, err := c.requireCommunity()
	if err != nil {
		return err
	}
	return c.post(ctx, ndc, "/community/leave", nil, nil)
}

// CheckIn performs the daily check-in in the selected community. timezone is
// the offset from UTC in minutes.
func (c *Client) CheckIn(ctx context.Context, timezone int) (*aminokit.CheckIn, error) {
	ndc, err := c.requireCommunity()
	if err != nil {
		return nil, err
	}

	var resp aminokit.CheckIn
	if err := c.post(ctx, ndc, "/check-in", map[string]any{"timezone": timezone}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
