package siteconfig

import (
	"encoding/json"
	"strconv"
	"time"
)

// BackgroundType selects the decorative background renderer.
type BackgroundType string

const (
	BackgroundRain      BackgroundType = "rain"
	BackgroundSnow      BackgroundType = "snow"
	BackgroundParticles BackgroundType = "particles"
	BackgroundGradient  BackgroundType = "gradient"
	BackgroundNoise     BackgroundType = "noise"
	BackgroundStars     BackgroundType = "stars"
	BackgroundImage     BackgroundType = "image"
	BackgroundVideo     BackgroundType = "video"
)

// EffectOverlay is an effect layered on top of image/video backgrounds.
type EffectOverlay string

const (
	OverlayNone      EffectOverlay = "none"
	OverlayRain      EffectOverlay = "rain"
	OverlaySnow      EffectOverlay = "snow"
	OverlayParticles EffectOverlay = "particles"
	OverlayStars     EffectOverlay = "stars"
)

// CursorStyle selects the cursor renderer.
type CursorStyle string

const (
	CursorDefault CursorStyle = "default"
	CursorGlow    CursorStyle = "glow"
	CursorTrail   CursorStyle = "trail"
	CursorRing    CursorStyle = "ring"
	CursorCustom  CursorStyle = "custom"
)

// SocialLink is one entry of the ordered link list. Order is display order.
type SocialLink struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
	Label    string `json:"label"`
	Enabled  bool   `json:"enabled"`
}

// TextStyle controls how the title and bio lines are rendered.
type TextStyle struct {
	FontFamily string `json:"fontFamily"`
	FontSize   string `json:"fontSize"`
	Color      string `json:"color"`
	Glow       bool   `json:"glow"`
	Animation  string `json:"animation"`
}

// SiteConfig is the single configuration document of the page. Field names
// on the wire match what the browser client persists.
type SiteConfig struct {
	Avatar   string `json:"avatar"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Status   string `json:"status"`
	Location string `json:"location"`

	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	AccentColor     string `json:"accentColor"`
	BackgroundColor string `json:"backgroundColor"`
	ForegroundColor string `json:"foregroundColor"`
	GlowColor       string `json:"glowColor"`
	BorderColor     string `json:"borderColor"`
	TextColor       string `json:"textColor"`

	BackgroundType      BackgroundType `json:"backgroundType"`
	BackgroundIntensity int            `json:"backgroundIntensity"`
	BackgroundImage     string         `json:"backgroundImage"`
	BackgroundVideo     string         `json:"backgroundVideo"`
	EffectOverlay       EffectOverlay  `json:"effectOverlay"`

	CardOpacity       int  `json:"cardOpacity"`
	CardBlur          int  `json:"cardBlur"`
	CardBorderOpacity int  `json:"cardBorderOpacity"`
	Card3DEnabled     bool `json:"card3DEnabled"`
	Card3DIntensity   int  `json:"card3DIntensity"`

	TitleStyle TextStyle `json:"titleStyle"`
	BioStyle   TextStyle `json:"bioStyle"`

	CursorStyle      CursorStyle `json:"cursorStyle"`
	CustomCursor     string      `json:"customCursor"`
	ParticlesEnabled bool        `json:"particlesEnabled"`
	GlowEnabled      bool        `json:"glowEnabled"`
	NoiseEnabled     bool        `json:"noiseEnabled"`

	MusicEnabled  bool   `json:"musicEnabled"`
	MusicURL      string `json:"musicUrl"`
	MusicVolume   int    `json:"musicVolume"`
	MusicTitle    string `json:"musicTitle"`
	MusicAutoPlay bool   `json:"musicAutoPlay"`

	Links []SocialLink `json:"links"`

	Enable3D      bool    `json:"enable3D"`
	RotationSpeed float64 `json:"rotationSpeed"`

	ShowDiscordCard bool     `json:"showDiscordCard"`
	DiscordUsername string   `json:"discordUsername"`
	DiscordStatus   string   `json:"discordStatus"`
	DiscordBadges   []string `json:"discordBadges"`
	DiscordAvatar   string   `json:"discordAvatar"`

	ShowViewCount bool `json:"showViewCount"`
	ViewCount     int  `json:"viewCount"`
}

// blobFields lists the fields that may carry inline-encoded media. The
// browser-side fallback cache mirrors exactly these so a device keeps its
// own uploads even when the server copy was stripped.
var blobFields = []string{
	"avatar",
	"backgroundImage",
	"backgroundVideo",
	"musicUrl",
	"customCursor",
	"discordAvatar",
}

// BlobFields returns the names of the fields that may hold inline-encoded
// media, in a stable order.
func BlobFields() []string {
	out := make([]string, len(blobFields))
	copy(out, blobFields)
	return out
}

// DefaultConfig returns a fully populated configuration. Partial documents
// read from storage are merged over this so consumers never observe a
// missing field.
func DefaultConfig() SiteConfig {
	return SiteConfig{
		Avatar:   "/avatar.svg",
		Username: "visitor",
		Bio:      "Welcome to my page",
		Status:   "online",
		Location: "somewhere",

		PrimaryColor:    "#ff6b9d",
		SecondaryColor:  "#c084fc",
		AccentColor:     "#f472b6",
		BackgroundColor: "#0a0a0f",
		ForegroundColor: "#fafafa",
		GlowColor:       "#ff6b9d",
		BorderColor:     "#ffffff",
		TextColor:       "#ffffff",

		BackgroundType:      BackgroundGradient,
		BackgroundIntensity: 100,
		EffectOverlay:       OverlayNone,

		CardOpacity:       60,
		CardBlur:          10,
		CardBorderOpacity: 20,
		Card3DEnabled:     true,
		Card3DIntensity:   15,

		TitleStyle: TextStyle{
			FontFamily: "display",
			FontSize:   "3xl",
			Color:      "#ff6b9d",
			Glow:       true,
			Animation:  "none",
		},
		BioStyle: TextStyle{
			FontFamily: "sans",
			FontSize:   "md",
			Color:      "#ff6b9d",
			Glow:       false,
			Animation:  "none",
		},

		CursorStyle: CursorDefault,
		GlowEnabled: true,

		MusicVolume:   30,
		MusicTitle:    "untitled",
		MusicAutoPlay: true,

		Links: []SocialLink{
			{ID: "1", Platform: "github", URL: "https://github.com", Icon: "github", Label: "GitHub", Enabled: true},
			{ID: "2", Platform: "discord", URL: "https://discord.com", Icon: "discord", Label: "Discord", Enabled: true},
		},

		RotationSpeed: 0.5,

		ShowDiscordCard: false,
		DiscordStatus:   "offline",
		DiscordBadges:   []string{},

		ShowViewCount: true,
	}
}

// MergeOverDefaults overlays a partial JSON document onto the default
// configuration. Fields absent from the document keep their default value;
// malformed JSON yields the defaults unchanged.
func MergeOverDefaults(raw []byte) SiteConfig {
	cfg := DefaultConfig()
	if len(raw) == 0 {
		return cfg
	}
	// Unmarshal into the populated struct: only fields present in the
	// document are overwritten.
	_ = json.Unmarshal(raw, &cfg)
	return cfg
}

// ApplyPatch shallow-merges the given partial fields into the config. Keys
// that do not map to a known field are ignored.
func ApplyPatch(cfg SiteConfig, patch map[string]any) SiteConfig {
	if len(patch) == 0 {
		return cfg
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return cfg
	}
	_ = json.Unmarshal(raw, &cfg)
	return cfg
}

// NewLinkID generates an identifier for a new social link from the current
// timestamp. Collisions within the same millisecond are an accepted risk;
// the persisted-data shape depends on this scheme.
func NewLinkID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
