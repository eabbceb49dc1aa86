package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Moirius/La-Station-Prospection/internal/config"
	"github.com/Moirius/La-Station-Prospection/internal/model"
	"github.com/Moirius/La-Station-Prospection/pkg/anthropic"
)

// maxSiteContentChars caps how much page content is sent per extraction call.
const maxSiteContentChars = 50000

const websiteSystemPrompt = `You extract structured business information from raw website content.
Respond with a single JSON object and nothing else, using exactly this schema:
{
  "contact": {"emails": [], "phones": [], "address": ""},
  "company": {"name": "", "type": "", "description": "", "products_services": [], "target_audience": ""},
  "practical": {"hours": "", "pricing": "", "services": []},
  "social": {"facebook": "", "instagram": "", "twitter": "", "linkedin": "", "youtube": "", "tiktok": "", "others": []},
  "media": {"images": 0, "videos": 0, "image_types": []}
}
Only include information present in the content. Leave fields empty when unknown.`

const snapshotSystemPrompt = `You read a screenshot of a %s business profile page.
Respond with a single JSON object and nothing else, using exactly this schema:
{
  "followers": "", "likes": "", "following": "", "posts": "",
  "bio": "", "intro": "", "description": "",
  "contact_info": {"phone": "", "email": "", "address": "", "website": ""},
  "services": [], "hours": "", "target_audience": "", "location": ""
}
Report counts exactly as displayed (e.g. "1.2K"). Use "Non visible" for fields
the screenshot does not show.`

// Extractor turns raw website content and profile screenshots into structured
// data through the model, with a regex fallback for website content.
type Extractor struct {
	ai  anthropic.Client
	cfg config.AnthropicConfig
	log *zap.Logger
}

// NewExtractor creates an extractor. A nil logger falls back to the global.
func NewExtractor(ai anthropic.Client, cfg config.AnthropicConfig, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.L()
	}
	return &Extractor{ai: ai, cfg: cfg, log: log}
}

// ExtractWebsite extracts structured business data from fetched page content.
// A model failure degrades to the regex fallback instead of returning an
// error: the result is always usable, tagged with its source.
func (e *Extractor) ExtractWebsite(ctx context.Context, url, content string) model.Extraction {
	if len(content) > maxSiteContentChars {
		content = content[:maxSiteContentChars]
	}

	result, err := e.extractWithModel(ctx, url, content)
	if err != nil {
		e.log.Warn("website extraction degraded to fallback",
			zap.String("url", url),
			zap.Error(err),
		)
		reason := eris.ToString(err, false)
		fb := fallbackExtract(content)
		fb.Error = "degraded extraction: " + reason
		return model.Extraction{
			Result: fb,
			Source: model.ExtractionSourceFallback,
			Reason: reason,
		}
	}
	return model.Extraction{Result: result, Source: model.ExtractionSourceAI}
}

func (e *Extractor) extractWithModel(ctx context.Context, url, content string) (*model.WebsiteExtraction, error) {
	temp := 0.0
	resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.cfg.TextModel,
		MaxTokens:   int64(e.cfg.MaxTokens),
		System:      websiteSystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: fmt.Sprintf("Website: %s\n\nContent:\n%s", url, content),
		}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: website extraction call")
	}
	resp.Usage.LogCost(e.cfg.TextModel, "website_extraction")

	var out model.WebsiteExtraction
	if err := json.Unmarshal([]byte(jsonBody(resp.Text())), &out); err != nil {
		return nil, eris.Wrap(err, "pipeline: parse website extraction")
	}
	return &out, nil
}

// AnalyzeSnapshot runs vision extraction over one profile screenshot.
func (e *Extractor) AnalyzeSnapshot(ctx context.Context, imagePath, platform string) (*model.SocialSnapshot, error) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read screenshot %s", imagePath)
	}

	resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.cfg.VisionModel,
		MaxTokens: int64(e.cfg.MaxTokens),
		System:    fmt.Sprintf(snapshotSystemPrompt, platform),
		Messages: []anthropic.Message{{
			Role: "user",
			Blocks: []anthropic.ContentInput{
				{ImageData: base64.StdEncoding.EncodeToString(img), ImageMediaType: "image/png"},
				{Text: fmt.Sprintf("Extract the %s profile information from this screenshot.", platform)},
			},
		}},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: %s snapshot analysis call", platform)
	}
	resp.Usage.LogCost(e.cfg.VisionModel, platform+"_snapshot")

	var snap model.SocialSnapshot
	if err := json.Unmarshal([]byte(jsonBody(resp.Text())), &snap); err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse %s snapshot", platform)
	}
	snap.Success = true
	return &snap, nil
}

// jsonBody strips code fences and surrounding prose, keeping the outermost
// JSON object of the model's reply.
func jsonBody(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+33\s?|0)[1-9](?:[\s.\-]?\d{2}){4}`)
	videoRe = regexp.MustCompile(`(?i)<video|youtube\.com/embed|player\.vimeo\.com`)
	imgRe   = regexp.MustCompile(`(?i)<img[\s>]`)
	urlRe   = regexp.MustCompile(`https?://[^\s"'<>)]+`)
)

// fallbackExtract is the degraded regex path used when the model call fails.
// It fills the same schema from raw page content.
func fallbackExtract(content string) *model.WebsiteExtraction {
	out := &model.WebsiteExtraction{}

	out.Contact.Emails = dedupCap(emailRe.FindAllString(content, -1), 5)
	out.Contact.Phones = dedupCap(phoneRe.FindAllString(content, -1), 5)

	for _, u := range urlRe.FindAllString(content, -1) {
		switch SocialPlatform(u) {
		case "facebook":
			if out.Social.Facebook == "" && ValidSocialURL(u, "facebook.com") {
				out.Social.Facebook = u
			}
		case "instagram":
			if out.Social.Instagram == "" && ValidSocialURL(u, "instagram.com") {
				out.Social.Instagram = u
			}
		}
	}

	out.Media.Images = len(imgRe.FindAllString(content, -1))
	out.Media.Videos = len(videoRe.FindAllString(content, -1))
	return out
}

func dedupCap(in []string, max int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range in {
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
		if len(out) >= max {
			break
		}
	}
	return out
}
