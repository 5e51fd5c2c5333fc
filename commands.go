package aminokit

// Frame types carried in the top-level "t" field of gateway frames.
const (
	FrameNotification = 10
	FrameChatMessage  = 1000
	// FrameActionStart and FrameActionEnd carry chat actions such as typing.
	FrameActionStart = 304
	FrameActionEnd   = 306
)

// Event keys used by the dispatcher.
const (
	EventAny             = "any"
	EventAction          = "action"
	EventNotification    = "notification"
	EventMessage         = "message"
	EventUserTypingStart = "user_typing_start"
	EventUserTypingEnd   = "user_typing_end"

	// Chat message keys: "{type}:{mediaType}".
	EventTextMessage        = "0:0"
	EventImageMessage       = "0:100"
	EventYouTubeMessage     = "0:103"
	EventStrikeMessage      = "1:0"
	EventVoiceMessage       = "2:110"
	EventStickerMessage     = "3:113"
	EventVideoMessage       = "4:0"
	EventShareURL           = "50:0"
	EventShareUser          = "51:0"
	EventDeleteMessage      = "100:0"
	EventMemberJoin         = "101:0"
	EventMemberQuit         = "102:0"
	EventPrivateChatInit    = "103:0"
	EventBackgroundChange   = "104:0"
	EventTitleChange        = "105:0"
	EventIconChange         = "106:0"
	EventVoiceChatStart     = "107:0"
	EventVoiceChatEnd       = "110:0"
	EventContentChange      = "113:0"
	EventOrganizerTransfer  = "116:0"
	EventForceRemoved       = "117:0"
	EventChatRemoved        = "118:0"
	EventAdminDeleteMessage = "119:0"
	EventSendCoins          = "120:0"
	EventAnnouncementPin    = "121:0"
	EventAnnouncementUnpin  = "127:0"
)

// Chat action names found in "actions" of action frames.
const (
	ActionTyping = "Typing"
)

// Socket error messages
const (
	ErrConnectionClosed     = "gateway connection is closed"
	ErrContextCancelled     = "gateway context cancelled"
	ErrFailedToEncode       = "failed to encode frame"
	ErrSocketAlreadyRunning = "socket already running"
	ErrInvalidFrame         = "invalid frame format"
)

// Content types accepted by the REST API.
const (
	ContentTypeJSON        = "application/json; charset=utf-8"
	ContentTypeURLEncoded  = "application/x-www-form-urlencoded"
	ContentTypeOctetStream = "application/octet-stream"
	ContentTypeJPG         = "image/jpg"
	ContentTypePNG         = "image/png"
	ContentTypeAAC         = "audio/aac"
)

// Object types referenced by moderation and embed payloads.
const (
	ObjectUser        = 0
	ObjectBlog        = 1
	ObjectItem        = 2
	ObjectComment     = 3
	ObjectChatMessage = 7
	ObjectChatThread  = 12
	ObjectCommunity   = 16
	ObjectImage       = 100
)

// Message types accepted by SendMessage.
const (
	MessageGeneral = 0
	MessageStrike  = 1
	MessageVoice   = 2
	MessageSticker = 3
	MessageVideo   = 4
)

// Media types of chat messages.
const (
	MediaNone    = 0
	MediaImage   = 100
	MediaYouTube = 103
	MediaVoice   = 110
	MediaSticker = 113
)

// ClientType is the client type the official mobile app reports.
const ClientType = 100

// GlobalNdcID routes a call to the global (non-community) API.
const GlobalNdcID = 0
