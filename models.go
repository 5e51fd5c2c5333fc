package aminokit

import (
	"encoding/json"
	"fmt"
	"time"
)

// SID is a decoded session token.
//
// The trailing signature is kept for introspection only; it is never verified
// locally.
type SID struct {
	Original   string         `json:"-"`
	Prefix     byte           `json:"-"`
	Signature  []byte         `json:"-"`
	Data       map[string]any `json:"-"`
	Version    int            `json:"0"`
	UserID     string         `json:"2"`
	IP         string         `json:"4"`
	IssuedAt   int64          `json:"5"`
	ClientType int            `json:"6"`
}

// Expired reports whether more than maxAge has passed since the token was issued.
func (s *SID) Expired(maxAge time.Duration, now time.Time) bool {
	return now.Unix()-s.IssuedAt > int64(maxAge/time.Second)
}

// Auth is the result of a login.
type Auth struct {
	AUID     string       `json:"auid"`
	SID      string       `json:"sid"`
	Secret   string       `json:"secret"`
	DeviceID string       `json:"deviceId,omitempty"`
	Account  *Account     `json:"account,omitempty"`
	User     *UserProfile `json:"userProfile,omitempty"`
}

type Account struct {
	UID                  string `json:"uid"`
	AminoID              string `json:"aminoId"`
	Nickname             string `json:"nickname"`
	Email                string `json:"email"`
	PhoneNumber          string `json:"phoneNumber"`
	Icon                 string `json:"icon"`
	Status               int    `json:"status"`
	Role                 int    `json:"role"`
	Activation           int    `json:"activation"`
	MembershipStatus     int    `json:"membershipStatus"`
	HasProfile           bool   `json:"hasProfile"`
	CreatedTime          string `json:"createdTime"`
	ModifiedTime         string `json:"modifiedTime"`
	EmailActivation      int    `json:"emailActivation"`
	PhoneNumberActivated int    `json:"phoneNumberActivation"`
}

type UserProfile struct {
	UID              string `json:"uid"`
	Nickname         string `json:"nickname"`
	Icon             string `json:"icon"`
	Content          string `json:"content"`
	AminoID          string `json:"aminoId"`
	NdcID            int    `json:"ndcId"`
	Role             int    `json:"role"`
	Level            int    `json:"level"`
	Reputation       int    `json:"reputation"`
	Status           int    `json:"status"`
	OnlineStatus     int    `json:"onlineStatus"`
	MembershipStatus int    `json:"membershipStatus"`
	FollowingStatus  int    `json:"followingStatus"`
	FollowersCount   int    `json:"membersCount"`
	FollowingCount   int    `json:"joinedCount"`
	PostsCount       int    `json:"postsCount"`
	BlogsCount       int    `json:"blogsCount"`
	CommentsCount    int    `json:"commentsCount"`
	IsGlobal         bool   `json:"isGlobal"`
	IsVerified       bool   `json:"isVerified"`
	CreatedTime      string `json:"createdTime"`
	ModifiedTime     string `json:"modifiedTime"`
}

type Community struct {
	NdcID        int          `json:"ndcId"`
	Name         string       `json:"name"`
	AminoID      string       `json:"endpoint"`
	Link         string       `json:"link"`
	Icon         string       `json:"icon"`
	Tagline      string       `json:"tagline"`
	Content      string       `json:"content"`
	Status       int          `json:"status"`
	JoinType     int          `json:"joinType"`
	MembersCount int          `json:"membersCount"`
	PrimaryLang  string       `json:"primaryLanguage"`
	Agent        *UserProfile `json:"agent,omitempty"`
	CreatedTime  string       `json:"createdTime"`
}

type Thread struct {
	ThreadID     string       `json:"threadId"`
	NdcID        int          `json:"ndcId"`
	Type         int          `json:"type"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Icon         string       `json:"icon"`
	Keywords     string       `json:"keywords"`
	UID          string       `json:"uid"`
	MembersCount int          `json:"membersCount"`
	MembersQuota int          `json:"membersQuota"`
	IsPinned     bool         `json:"isPinned"`
	Status       int          `json:"status"`
	Author       *UserProfile `json:"author,omitempty"`
	LastReadTime string       `json:"lastReadTime"`
	CreatedTime  string       `json:"createdTime"`
	ModifiedTime string       `json:"modifiedTime"`
}

// Message is a chat message, as returned by the REST API and carried in
// chat-message gateway frames.
type Message struct {
	MessageID   string            `json:"messageId"`
	ThreadID    string            `json:"threadId"`
	UID         string            `json:"uid"`
	Type        int               `json:"type"`
	MediaType   int               `json:"mediaType"`
	Content     string            `json:"content"`
	MediaValue  string            `json:"mediaValue"`
	ClientRefID int64             `json:"clientRefId"`
	IsHidden    bool              `json:"isHidden"`
	CreatedTime string            `json:"createdTime"`
	Author      *UserProfile      `json:"author,omitempty"`
	Extensions  MessageExtensions `json:"extensions"`
}

// MessagePage is one page of a chat history, newest first.
type MessagePage struct {
	Messages      []Message
	NextPageToken string
	PrevPageToken string
}

type MessageExtensions struct {
	ReplyMessageID string    `json:"replyMessageId,omitempty"`
	Mentions       []Mention `json:"mentionedArray,omitempty"`
	Sticker        *Sticker  `json:"sticker,omitempty"`
	ReplyMessage   *Message  `json:"replyMessage,omitempty"`
}

type Mention struct {
	UID string `json:"uid"`
}

type Sticker struct {
	StickerID string `json:"stickerId"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
}

type Blog struct {
	BlogID        string       `json:"blogId"`
	NdcID         int          `json:"ndcId"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	Type          int          `json:"type"`
	Status        int          `json:"status"`
	VotesCount    int          `json:"votesCount"`
	CommentsCount int          `json:"commentsCount"`
	ViewCount     int          `json:"viewCount"`
	MediaList     []MediaItem  `json:"mediaList,omitempty"`
	Author        *UserProfile `json:"author,omitempty"`
	CreatedTime   string       `json:"createdTime"`
	ModifiedTime  string       `json:"modifiedTime"`
}

type Comment struct {
	CommentID   string       `json:"commentId"`
	ParentID    string       `json:"parentId"`
	Content     string       `json:"content"`
	VotesSum    int          `json:"votesSum"`
	Author      *UserProfile `json:"author,omitempty"`
	CreatedTime string       `json:"createdTime"`
}

// LinkInfo is the resolution of a share link.
type LinkInfo struct {
	ObjectID   string     `json:"objectId"`
	ObjectType int        `json:"objectType"`
	NdcID      int        `json:"ndcId"`
	ShortURL   string     `json:"shortUrl"`
	FullPath   string     `json:"fullPath"`
	Community  *Community `json:"community,omitempty"`
}

type CheckIn struct {
	ConsecutiveCheckInDays int  `json:"consecutiveCheckInDays"`
	CanPlayLottery         bool `json:"canPlayLottery"`
	EarnedReputationPoint  int  `json:"earnedReputationPoint"`
}

// MediaItem is an entry of a media list. On the wire it is the array
// [type, url, caption].
type MediaItem struct {
	Type    int
	URL     string
	Caption string
}

func (m MediaItem) MarshalJSON() ([]byte, error) {
	var caption any
	if m.Caption != "" {
		caption = m.Caption
	}
	return json.Marshal([]any{m.Type, m.URL, caption})
}

func (m *MediaItem) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("media item: want at least 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &m.Type); err != nil {
		return fmt.Errorf("media item type: %w", err)
	}
	if err := json.Unmarshal(raw[1], &m.URL); err != nil {
		return fmt.Errorf("media item url: %w", err)
	}
	m.Caption = ""
	if len(raw) > 2 {
		var caption *string
		if err := json.Unmarshal(raw[2], &caption); err == nil && caption != nil {
			m.Caption = *caption
		}
	}
	return nil
}
