package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/luciancaetano/aminokit"
)

// mentionEscaper rewrites the "<$" and "$>" mention markers into the
// invisible characters the chat renderer expects.
var mentionEscaper = strings.NewReplacer("<$", "\u200e\u200f", "$>", "\u202c\u202d")

func threadPath(threadID string) string {
	return "/chat/thread/" + url.PathEscape(threadID)
}

// clientRefID matches the reference ids generated by the official clients.
func (c *Client) clientRefID() int {
	return int(c.now().Unix() / 10 % 1000000000)
}

func (c *Client) GetChatThread(ctx context.Context, threadID string) (*aminokit.Thread, error) {
	var resp struct {
		Thread aminokit.Thread `json:"thread"`
	}
	if err := c.get(ctx, c.NdcID(), threadPath(threadID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Thread, nil
}

// GetChatThreads lists the chats the session has joined.
func (c *Client) GetChatThreads(ctx context.Context, start, size int) ([]aminokit.Thread, error) {
	query := paging(start, size)
	query.Set("type", "joined-me")

	var resp struct {
		Threads []aminokit.Thread `json:"threadList"`
	}
	if err := c.get(ctx, c.NdcID(), "/chat/thread", query, &resp); err != nil {
		return nil, err
	}
	return resp.Threads, nil
}

// GetChatMessages returns one page of a chat's history. Pass the
// NextPageToken of the previous page to continue.
func (c *Client) GetChatMessages(ctx context.Context, threadID string, size int, pageToken string) (*aminokit.MessagePage, error) {
	if size <= 0 {
		size = 25
	}
	query := url.Values{
		"v":          {"2"},
		"pagingType": {"t"},
		"size":       {strconv.Itoa(size)},
	}
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	var resp struct {
		Messages []aminokit.Message `json:"messageList"`
		Paging   struct {
			NextPageToken string `json:"nextPageToken"`
			PrevPageToken string `json:"prevPageToken"`
		} `json:"paging"`
	}
	if err := c.get(ctx, c.NdcID(), threadPath(threadID)+"/message", query, &resp); err != nil {
		return nil, err
	}
	return &aminokit.MessagePage{
		Messages:      resp.Messages,
		NextPageToken: resp.Paging.NextPageToken,
		PrevPageToken: resp.Paging.PrevPageToken,
	}, nil
}

// StartChat opens a chat with the given users.
func (c *Client) StartChat(ctx context.Context, title, message, content string, uids ...string) (*aminokit.Thread, error) {
	payload := map[string]any{
		"title":                 title,
		"initialMessageContent": message,
		"content":               content,
		"inviteeUids":           uids,
		"type":                  0,
		"publishToGlobal":       0,
	}

	var resp struct {
		Thread aminokit.Thread `json:"thread"`
	}
	if err := c.post(ctx, c.NdcID(), "/chat/thread", payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Thread, nil
}

func (c *Client) JoinChat(ctx context.Context, threadID string) error {
	auid, err := c.requireLogin()
	if err != nil {
		return err
	}
	return c.post(ctx, c.NdcID(), threadPath(threadID)+"/member/"+auid, nil, nil)
}

func (c *Client) LeaveChat(ctx context.Context, threadID string) error {
	auid, err := c.requireLogin()
	if err != nil {
		return err
	}
	return c.delete(ctx, c.NdcID(), threadPath(threadID)+"/member/"+auid, nil)
}

func (c *Client) InviteToChat(ctx context.Context, threadID string, uids ...string) error {
	return c.post(ctx, c.NdcID(), threadPath(threadID)+"/member/invite", map[string]any{"uids": uids}, nil)
}

// Kick removes a member from a chat. The service flag is inverted: it takes
// allowRejoin=0 to let the user come back.
func (c *Client) Kick(ctx context.Context, threadID, uid string, allowRejoin bool) error {
	flag := "1"
	if allowRejoin {
		flag = "0"
	}
	return c.delete(ctx, c.NdcID(), threadPath(threadID)+"/member/"+url.PathEscape(uid), url.Values{"allowRejoin": {flag}})
}

// Embed attaches a link card to a message.
type Embed struct {
	ObjectID   string
	ObjectType int
	Link       string
	Title      string
	Content    string
	Image      string
}

// MessageOptions are the optional parts of a chat message.
type MessageOptions struct {
	// Type defaults to aminokit.MessageGeneral.
	Type     int
	ReplyTo  string
	Mentions []string
	Embed    *Embed
}

// SendMessage posts a message to a chat in the selected community.
func (c *Client) SendMessage(ctx context.Context, threadID, content string, opts *MessageOptions) (*aminokit.Message, error) {
	return c.sendMessage(ctx, c.NdcID(), threadID, content, opts)
}

func (c *Client) sendMessage(ctx context.Context, ndc int, threadID, content string, opts *MessageOptions) (*aminokit.Message, error) {
	if opts == nil {
		opts = &MessageOptions{}
	}

	mentions := make([]map[string]string, 0, len(opts.Mentions))
	for _, uid := range opts.Mentions {
		mentions = append(mentions, map[string]string{"uid": uid})
	}

	attached := map[string]any{
		"objectId":   nil,
		"objectType": nil,
		"link":       nil,
		"title":      nil,
		"content":    nil,
		"mediaList":  nil,
	}
	if e := opts.Embed; e != nil {
		attached["objectId"] = e.ObjectID
		attached["objectType"] = e.ObjectType
		attached["link"] = e.Link
		attached["title"] = e.Title
		attached["content"] = e.Content
		if e.Image != "" {
			attached["mediaList"] = []aminokit.MediaItem{{Type: aminokit.MediaImage, URL: e.Image}}
		}
	}

	payload := map[string]any{
		"type":           opts.Type,
		"content":        mentionEscaper.Replace(content),
		"clientRefId":    c.clientRefID(),
		"attachedObject": attached,
		"extensions":     map[string]any{"mentionedArray": mentions},
	}
	if opts.ReplyTo != "" {
		payload["replyMessageId"] = opts.ReplyTo
	}
	return c.postMessage(ctx, ndc, threadID, payload)
}

func (c *Client) SendSticker(ctx context.Context, threadID, stickerID string) (*aminokit.Message, error) {
	return c.sendSticker(ctx, c.NdcID(), threadID, stickerID)
}

func (c *Client) sendSticker(ctx context.Context, ndc int, threadID, stickerID string) (*aminokit.Message, error) {
	payload := map[string]any{
		"type":        aminokit.MessageSticker,
		"stickerId":   stickerID,
		"clientRefId": c.clientRefID(),
	}
	return c.postMessage(ctx, ndc, threadID, payload)
}

// SendImage posts a JPEG image to a chat.
func (c *Client) SendImage(ctx context.Context, threadID string, image []byte) (*aminokit.Message, error) {
	payload := map[string]any{
		"type":                        aminokit.MessageGeneral,
		"mediaType":                   aminokit.MediaImage,
		"mediaUhqEnabled":             true,
		"clientRefId":                 c.clientRefID(),
		"mediaUploadValueContentType": aminokit.ContentTypeJPG,
		"mediaUploadValue":            base64.StdEncoding.EncodeToString(image),
	}
	return c.postMessage(ctx, c.NdcID(), threadID, payload)
}

func (c *Client) postMessage(ctx context.Context, ndc int, threadID string, payload map[string]any) (*aminokit.Message, error) {
	var resp struct {
		Message aminokit.Message `json:"message"`
	}
	if err := c.post(ctx, ndc, threadPath(threadID)+"/message", payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

// DeleteMessage deletes a chat message. With asStaff the deletion goes
// through the moderation route and records reason.
func (c *Client) DeleteMessage(ctx context.Context, threadID, messageID string, asStaff bool, reason string) error {
	path := threadPath(threadID) + "/message/" + url.PathEscape(messageID)
	if !asStaff {
		return c.delete(ctx, c.NdcID(), path, nil)
	}
	payload := map[string]any{
		"adminOpName": adminOpDeleteMessage,
		"adminOpNote": map[string]any{"content": reason},
	}
	return c.post(ctx, c.NdcID(), path+"/admin", payload, nil)
}

func (c *Client) MarkAsRead(ctx context.Context, threadID, messageID string) error {
	return c.post(ctx, c.NdcID(), threadPath(threadID)+"/mark-as-read", map[string]any{"messageId": messageID}, nil)
}

// SendTyping announces over the event socket that the session started or
// stopped typing in a chat.
func (c *Client) SendTyping(ctx context.Context, threadID string, typing bool) error {
	ndc, err := c.requireCommunity()
	if err != nil {
		return err
	}

	frameType := aminokit.FrameActionEnd
	if typing {
		frameType = aminokit.FrameActionStart
	}
	payload := map[string]any{
		"actions": []string{aminokit.ActionTyping},
		"target":  fmt.Sprintf("ndc://x%d/chat-thread/%s", ndc, threadID),
		"ndcId":   ndc,
		"params":  map[string]any{"threadType": 2},
		"id":      uuid.NewString(),
	}
	return c.socket.Send(ctx, frameType, payload)
}
