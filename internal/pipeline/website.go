package pipeline

import (
	"regexp"

	"github.com/Moirius/La-Station-Prospection/internal/model"
)

var formRe = regexp.MustCompile(`(?i)<form[\s>]`)

// mergeWebsiteExtraction folds a website extraction into the lead. Populated
// lead fields are never overwritten: the first email and phone found win only
// when the maps data left them blank, and social URLs are adopted only when
// unset and domain-validated.
func mergeWebsiteExtraction(lead *model.Lead, ex *model.WebsiteExtraction) {
	if ex == nil {
		return
	}
	lead.SiteAnalysis = ex
	lead.SiteEmails = ex.Contact.Emails
	lead.SitePhones = ex.Contact.Phones
	lead.SiteAddress = ex.Contact.Address

	if lead.Email == "" && len(ex.Contact.Emails) > 0 {
		lead.Email = ex.Contact.Emails[0]
	}
	if lead.Phone == "" && len(ex.Contact.Phones) > 0 {
		lead.Phone = ex.Contact.Phones[0]
	}

	if lead.FacebookURL == "" && ValidSocialURL(ex.Social.Facebook, "facebook.com") {
		lead.FacebookURL = ex.Social.Facebook
	}
	if lead.InstagramURL == "" && ValidSocialURL(ex.Social.Instagram, "instagram.com") {
		lead.InstagramURL = ex.Social.Instagram
	}
	if lead.TwitterURL == "" && validOnAny(ex.Social.Twitter, "twitter.com", "x.com") {
		lead.TwitterURL = ex.Social.Twitter
	}
	if lead.LinkedInURL == "" && ValidSocialURL(ex.Social.LinkedIn, "linkedin.com") {
		lead.LinkedInURL = ex.Social.LinkedIn
	}
	if lead.YouTubeURL == "" && ValidSocialURL(ex.Social.YouTube, "youtube.com") {
		lead.YouTubeURL = ex.Social.YouTube
	}
	if lead.TikTokURL == "" && ValidSocialURL(ex.Social.TikTok, "tiktok.com") {
		lead.TikTokURL = ex.Social.TikTok
	}
	if len(lead.OtherSocials) == 0 {
		lead.OtherSocials = ex.Social.Others
	}
	lead.SocialDetected = lead.FacebookURL != "" || lead.InstagramURL != "" ||
		lead.TwitterURL != "" || lead.LinkedInURL != "" ||
		lead.YouTubeURL != "" || lead.TikTokURL != "" || len(lead.OtherSocials) > 0

	if ex.Media.Images > 0 {
		lead.HasImages = true
		count := ex.Media.Images
		lead.ImageCount = &count
	}
	if ex.Media.Videos > 0 {
		lead.HasVideo = true
	}
	if len(ex.Company.ProductsServices) > 0 || len(ex.Practical.Services) > 0 {
		lead.HasProductsServices = true
	}
}

// validOnAny accepts a URL valid on any of the given platform domains.
func validOnAny(raw string, domains ...string) bool {
	for _, d := range domains {
		if ValidSocialURL(raw, d) {
			return true
		}
	}
	return false
}

// detectContactForm reports whether raw page content carries a form element.
func detectContactForm(content string) bool {
	return formRe.MatchString(content)
}
