package model

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the state of a processing stage on a lead.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Channel identifies an outreach channel for contact tracking.
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelPhone     Channel = "phone"
	ChannelForm      Channel = "form"
	ChannelFacebook  Channel = "facebook"
	ChannelInstagram Channel = "instagram"
	ChannelAddress   Channel = "address"
)

// Channels lists every outreach channel in display order.
var Channels = []Channel{
	ChannelEmail, ChannelPhone, ChannelForm,
	ChannelFacebook, ChannelInstagram, ChannelAddress,
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	for _, ch := range Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// Lead is the persisted enrichment record for one business. The Name is the
// deduplication key (case-insensitive, see NameKey).
type Lead struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Maps-sourced fields. Address/Phone/Email mirror the maps values and are
	// only ever filled, never overwritten, by later stages.
	Category      string   `json:"category,omitempty"`
	Address       string   `json:"address,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Email         string   `json:"email,omitempty"`
	Website       string   `json:"website,omitempty"`
	GoogleMapsURL string   `json:"google_maps_url,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   *int     `json:"review_count,omitempty"`
	PriceLevel    *int     `json:"price_level,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	OpeningHours  []string `json:"opening_hours,omitempty"`
	Reviews       []Review `json:"reviews,omitempty"`

	// Website-sourced fields.
	SiteEmails   []string           `json:"site_emails,omitempty"`
	SitePhones   []string           `json:"site_phones,omitempty"`
	SiteAddress  string             `json:"site_address,omitempty"`
	SiteAnalysis *WebsiteExtraction `json:"site_analysis,omitempty"`

	// Site richness signals.
	HasVideo            bool `json:"has_video"`
	HasImages           bool `json:"has_images"`
	ImageCount          *int `json:"image_count,omitempty"`
	HasProductsServices bool `json:"has_products_services"`
	HasContactForm      bool `json:"has_contact_form"`
	SocialDetected      bool `json:"social_detected"`

	// Social profile URLs.
	FacebookURL  string   `json:"facebook_url,omitempty"`
	InstagramURL string   `json:"instagram_url,omitempty"`
	TwitterURL   string   `json:"twitter_url,omitempty"`
	LinkedInURL  string   `json:"linkedin_url,omitempty"`
	YouTubeURL   string   `json:"youtube_url,omitempty"`
	TikTokURL    string   `json:"tiktok_url,omitempty"`
	OtherSocials []string `json:"other_socials,omitempty"`

	// Facebook-sourced fields (screenshot analysis).
	FacebookFollowers   *int   `json:"facebook_followers,omitempty"`
	FacebookLikes       *int   `json:"facebook_likes,omitempty"`
	FacebookIntro       string `json:"facebook_intro,omitempty"`
	FacebookDescription string `json:"facebook_description,omitempty"`
	FacebookEmail       string `json:"facebook_email,omitempty"`
	FacebookPhone       string `json:"facebook_phone,omitempty"`
	FacebookAddress     string `json:"facebook_address,omitempty"`
	FacebookWebsite     string `json:"facebook_website,omitempty"`
	FacebookScreenshot  string `json:"facebook_screenshot,omitempty"`

	// Instagram-sourced fields (screenshot analysis).
	InstagramPosts      *int   `json:"instagram_posts,omitempty"`
	InstagramFollowers  *int   `json:"instagram_followers,omitempty"`
	InstagramFollowing  *int   `json:"instagram_following,omitempty"`
	InstagramBio        string `json:"instagram_bio,omitempty"`
	InstagramEmail      string `json:"instagram_email,omitempty"`
	InstagramPhone      string `json:"instagram_phone,omitempty"`
	InstagramAddress    string `json:"instagram_address,omitempty"`
	InstagramWebsite    string `json:"instagram_website,omitempty"`
	InstagramScreenshot string `json:"instagram_screenshot,omitempty"`

	// Processing state. Logs are append-only audit trails.
	ScrapeStatus Status `json:"scrape_status"`
	AIStatus     Status `json:"ai_status"`
	ScrapeLog    string `json:"scrape_log,omitempty"`
	AILog        string `json:"ai_log,omitempty"`

	// Scores.
	OpportunityScore    *float64 `json:"opportunity_score,omitempty"`
	PropensityScore     *float64 `json:"propensity_score,omitempty"`
	PropensityRationale string   `json:"propensity_rationale,omitempty"`

	// Derived availability flags, recomputed by RefreshInfoFlags.
	HasEmail     bool `json:"has_email"`
	HasPhone     bool `json:"has_phone"`
	HasAddress   bool `json:"has_address"`
	HasWebsite   bool `json:"has_website"`
	HasFacebook  bool `json:"has_facebook"`
	HasInstagram bool `json:"has_instagram"`

	// Contact tracking per channel.
	Contacted   map[Channel]bool       `json:"contacted,omitempty"`
	ContactedAt map[Channel]*time.Time `json:"contacted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review is a single maps review kept on the lead.
type Review struct {
	Author string  `json:"author,omitempty"`
	Rating float64 `json:"rating,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// NameKey returns the deduplication key for the lead name: trimmed and
// lowercased, so "Café Julien" and "CAFÉ JULIEN" collide.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NameKey returns the lead's deduplication key.
func (l *Lead) NameKey() string {
	return NameKey(l.Name)
}

// AppendLog appends a timestamped line to the scrape audit log.
func (l *Lead) AppendLog(msg string) {
	l.ScrapeLog = appendLine(l.ScrapeLog, msg)
}

// AppendAILog appends a timestamped line to the AI audit log.
func (l *Lead) AppendAILog(msg string) {
	l.AILog = appendLine(l.AILog, msg)
}

func appendLine(log, msg string) string {
	line := fmt.Sprintf("[%s] %s", time.Now().UTC().Format(time.RFC3339), msg)
	if log == "" {
		return line
	}
	return log + "\n" + line
}

// MarkContacted records an outreach on the given channel. The timestamp is set
// on the first mark only; returns false when the channel was already marked.
func (l *Lead) MarkContacted(ch Channel) bool {
	if l.Contacted[ch] {
		return false
	}
	if l.Contacted == nil {
		l.Contacted = make(map[Channel]bool)
	}
	if l.ContactedAt == nil {
		l.ContactedAt = make(map[Channel]*time.Time)
	}
	now := time.Now().UTC()
	l.Contacted[ch] = true
	l.ContactedAt[ch] = &now
	return true
}

// UnmarkContacted clears an outreach mark and its timestamp. Returns false
// when the channel was not marked.
func (l *Lead) UnmarkContacted(ch Channel) bool {
	if !l.Contacted[ch] {
		return false
	}
	delete(l.Contacted, ch)
	delete(l.ContactedAt, ch)
	return true
}

// RefreshInfoFlags recomputes the derived availability flags from every
// source namespace. Call after any stage that touches contact fields.
func (l *Lead) RefreshInfoFlags() {
	l.HasEmail = l.Email != "" || len(l.SiteEmails) > 0 ||
		l.FacebookEmail != "" || l.InstagramEmail != ""
	l.HasPhone = l.Phone != "" || len(l.SitePhones) > 0 ||
		l.FacebookPhone != "" || l.InstagramPhone != ""
	l.HasAddress = l.Address != "" || l.SiteAddress != "" ||
		l.FacebookAddress != "" || l.InstagramAddress != ""
	l.HasWebsite = l.Website != ""
	l.HasFacebook = l.FacebookURL != ""
	l.HasInstagram = l.InstagramURL != ""
}
