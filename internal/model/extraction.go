package model

// ExtractionSource tags how a website extraction was produced.
type ExtractionSource string

const (
	// ExtractionSourceAI marks a structured extraction returned by the model.
	ExtractionSourceAI ExtractionSource = "ai"
	// ExtractionSourceFallback marks a degraded regex-based extraction used
	// when the model call failed.
	ExtractionSourceFallback ExtractionSource = "fallback"
)

// Extraction is the tagged outcome of the website extraction stage. Reason is
// set when Source is fallback and records why the primary path failed.
type Extraction struct {
	Result *WebsiteExtraction `json:"result"`
	Source ExtractionSource   `json:"source"`
	Reason string             `json:"reason,omitempty"`
}

// WebsiteExtraction is the structured information pulled from a business
// website. Error marks a degraded extraction whose fields may be partial.
type WebsiteExtraction struct {
	Contact   ContactInfo   `json:"contact"`
	Company   CompanyInfo   `json:"company"`
	Practical PracticalInfo `json:"practical"`
	Social    SocialLinks   `json:"social"`
	Media     MediaInfo     `json:"media"`
	Error     string        `json:"error,omitempty"`
}

// ContactInfo groups contact details found on a website.
type ContactInfo struct {
	Emails  []string `json:"emails,omitempty"`
	Phones  []string `json:"phones,omitempty"`
	Address string   `json:"address,omitempty"`
}

// CompanyInfo describes the business itself.
type CompanyInfo struct {
	Name             string   `json:"name,omitempty"`
	Type             string   `json:"type,omitempty"`
	Description      string   `json:"description,omitempty"`
	ProductsServices []string `json:"products_services,omitempty"`
	TargetAudience   string   `json:"target_audience,omitempty"`
}

// PracticalInfo holds operational details.
type PracticalInfo struct {
	Hours    string   `json:"hours,omitempty"`
	Pricing  string   `json:"pricing,omitempty"`
	Services []string `json:"services,omitempty"`
}

// SocialLinks holds social profile URLs detected on the website.
type SocialLinks struct {
	Facebook  string   `json:"facebook,omitempty"`
	Instagram string   `json:"instagram,omitempty"`
	Twitter   string   `json:"twitter,omitempty"`
	LinkedIn  string   `json:"linkedin,omitempty"`
	YouTube   string   `json:"youtube,omitempty"`
	TikTok    string   `json:"tiktok,omitempty"`
	Others    []string `json:"others,omitempty"`
}

// MediaInfo summarizes media richness of the website.
type MediaInfo struct {
	Images     int      `json:"images"`
	Videos     int      `json:"videos"`
	ImageTypes []string `json:"image_types,omitempty"`
}

// SocialSnapshot is the structured result of analyzing one social profile
// screenshot. String fields may carry the raw on-screen value (e.g. "1.2K");
// normalization happens downstream.
type SocialSnapshot struct {
	Followers      string          `json:"followers,omitempty"`
	Likes          string          `json:"likes,omitempty"`
	Following      string          `json:"following,omitempty"`
	Posts          string          `json:"posts,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	Intro          string          `json:"intro,omitempty"`
	Description    string          `json:"description,omitempty"`
	ContactInfo    SnapshotContact `json:"contact_info"`
	Services       []string        `json:"services,omitempty"`
	Hours          string          `json:"hours,omitempty"`
	TargetAudience string          `json:"target_audience,omitempty"`
	Location       string          `json:"location,omitempty"`
	Success        bool            `json:"success"`
	Error          string          `json:"error,omitempty"`
}

// SnapshotContact is contact info read from a profile screenshot.
type SnapshotContact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Website string `json:"website,omitempty"`
}
