package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Moirius/La-Station-Prospection/internal/model"
	"github.com/Moirius/La-Station-Prospection/pkg/capture"
)

// scrapeSocial captures and analyzes every known social profile of the lead.
// Per-platform failures are logged on the lead and never abort the others.
// The AI sub-status tracks this phase independently of the scrape status.
func (p *Pipeline) scrapeSocial(ctx context.Context, sess capture.Session, lead *model.Lead) {
	if lead.FacebookURL == "" && lead.InstagramURL == "" {
		return
	}
	if sess == nil {
		lead.AppendLog("social capture skipped: no capture session")
		return
	}

	lead.AIStatus = model.StatusInProgress
	ok := true
	if lead.FacebookURL != "" {
		ok = p.analyzeProfile(ctx, sess, lead, "facebook", lead.FacebookURL) && ok
	}
	if lead.InstagramURL != "" {
		ok = p.analyzeProfile(ctx, sess, lead, "instagram", lead.InstagramURL) && ok
	}
	if ok {
		lead.AIStatus = model.StatusSuccess
	} else {
		lead.AIStatus = model.StatusError
	}
}

func (p *Pipeline) analyzeProfile(ctx context.Context, sess capture.Session, lead *model.Lead, platform, profileURL string) bool {
	path, err := sess.Capture(ctx, profileURL, lead.ID, platform)
	if err != nil {
		p.log.Warn("profile capture failed",
			zap.String("lead_id", lead.ID),
			zap.String("platform", platform),
			zap.Error(err),
		)
		lead.AppendLog(fmt.Sprintf("%s capture failed: %v", platform, err))
		return false
	}

	snap, err := p.extractor.AnalyzeSnapshot(ctx, path, platform)
	if err != nil {
		p.log.Warn("snapshot analysis failed",
			zap.String("lead_id", lead.ID),
			zap.String("platform", platform),
			zap.Error(err),
		)
		lead.AppendAILog(fmt.Sprintf("%s analysis failed: %v", platform, err))
		// The screenshot is still worth keeping for a later pass.
		setScreenshot(lead, platform, path)
		return false
	}

	setScreenshot(lead, platform, path)
	switch platform {
	case "facebook":
		applyFacebookSnapshot(lead, snap)
		lead.AppendAILog(fmt.Sprintf("facebook analysis done (%s followers)", orDash(snap.Followers)))
	case "instagram":
		applyInstagramSnapshot(lead, snap)
		lead.AppendAILog(fmt.Sprintf("instagram analysis done (%s followers)", orDash(snap.Followers)))
	}
	return true
}

func setScreenshot(lead *model.Lead, platform, path string) {
	switch platform {
	case "facebook":
		lead.FacebookScreenshot = path
	case "instagram":
		lead.InstagramScreenshot = path
	}
}

// applyFacebookSnapshot stores normalized Facebook metrics on the lead.
// Values the page did not show stay unset rather than becoming zero.
func applyFacebookSnapshot(lead *model.Lead, snap *model.SocialSnapshot) {
	if n := ParseApproxCount(snap.Followers); n != nil {
		lead.FacebookFollowers = n
	}
	if n := ParseApproxCount(snap.Likes); n != nil {
		lead.FacebookLikes = n
	}

	if intro := visibleValue(snap.Intro); intro != "" {
		lead.FacebookIntro = intro
	} else if desc := visibleValue(snap.Description); desc != "" {
		lead.FacebookDescription = desc
	}

	if v := visibleValue(snap.ContactInfo.Phone); v != "" {
		lead.FacebookPhone = v
	}
	if v := visibleValue(snap.ContactInfo.Email); v != "" {
		lead.FacebookEmail = v
	}
	if v := visibleValue(snap.ContactInfo.Address); v != "" {
		lead.FacebookAddress = v
	}
	if v := visibleValue(snap.ContactInfo.Website); v != "" {
		lead.FacebookWebsite = v
	}
}

// applyInstagramSnapshot stores normalized Instagram metrics on the lead.
func applyInstagramSnapshot(lead *model.Lead, snap *model.SocialSnapshot) {
	if n := ParseApproxCount(snap.Followers); n != nil {
		lead.InstagramFollowers = n
	}
	if n := ParseApproxCount(snap.Following); n != nil {
		lead.InstagramFollowing = n
	}
	if n := ParseApproxCount(snap.Posts); n != nil {
		lead.InstagramPosts = n
	}

	if bio := visibleValue(snap.Bio); bio != "" {
		lead.InstagramBio = bio
	} else if desc := visibleValue(snap.Description); desc != "" {
		lead.InstagramBio = desc
	}

	if v := visibleValue(snap.ContactInfo.Phone); v != "" {
		lead.InstagramPhone = v
	}
	if v := visibleValue(snap.ContactInfo.Email); v != "" {
		lead.InstagramEmail = v
	}
	if v := visibleValue(snap.ContactInfo.Address); v != "" {
		lead.InstagramAddress = v
	}
	if v := visibleValue(snap.ContactInfo.Website); v != "" {
		lead.InstagramWebsite = v
	}
}

func orDash(s string) string {
	if v := visibleValue(s); v != "" {
		return v
	}
	return "-"
}
