package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"gorm.io/datatypes"
)

// Per-renderer payload variants. The data column is schema-free at the
// storage layer; every write goes through DecodeBlockData so only a
// validated variant ever lands in a row.

// RedirectData is the payload for redirect blocks, the product's original
// primary use case.
type RedirectData struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// ArticleData is the payload for long-form article blocks. Content is
// sanitized HTML; ReadingTime is minutes, estimated on write.
type ArticleData struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Summary     string `json:"summary,omitempty"`
	ReadingTime int    `json:"readingTime,omitempty"`
}

// ImageData is the payload for a single image block.
type ImageData struct {
	Src     string `json:"src"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// CardData is the payload for a link-card block.
type CardData struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	ImageSrc    string `json:"imageSrc,omitempty"`
}

// GalleryData is the payload for an ordered image gallery.
type GalleryData struct {
	Images []ImageData `json:"images"`
}

// PageData is the payload for a composite page block; the children
// themselves live as separate rows parented to the page.
type PageData struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// HeadingData is the payload for a heading block.
type HeadingData struct {
	Text  string `json:"text"`
	Level int    `json:"level,omitempty"`
}

// TextData is the payload for a plain-text block.
type TextData struct {
	Text string `json:"text"`
}

// DecodeBlockData decodes and validates raw payload JSON against the
// variant selected by renderer. It returns the decoded variant so callers
// can normalize fields (e.g. sanitize article content) before persisting.
func DecodeBlockData(renderer string, raw datatypes.JSON) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("data is required for renderer %q", renderer)
	}

	switch renderer {
	case RendererRedirect:
		var d RedirectData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("malformed redirect data: %w", err)
		}
		if err := validateDestinationURL(d.URL); err != nil {
			return nil, err
		}
		if d.StatusCode != 0 && (d.StatusCode < 300 || d.StatusCode > 399) {
			return nil, fmt.Errorf("redirect statusCode must be a 3xx code, got %d", d.StatusCode)
		}
		return &d, nil
	case RendererArticle:
		var d ArticleData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("malformed article data: %w", err)
		}
		if strings.TrimSpace(d.Title) == "" {
			return nil, fmt.Errorf("article title is required")
		}
		if strings.TrimSpace(d.Content) == "" {
			return nil, fmt.Errorf("article content is required")
		}
		return &d, nil
	case RendererImage:
		var d ImageData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("malformed image data: %w", err)
		}
		if d.Src == "" {
			return nil, fmt.Errorf("image src is required")
		}
		return &d, nil
	case RendererCard:
		var d CardData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("malformed card data: %w", err)
		}
		if strings.TrimSpace(d.Title) == "" {
			return nil, fmt.Errorf("card title is required")
		}
		return &d, nil
	case RendererGallery:
		var d GalleryData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("malformed gallery data: %w", err)
		}
		if len(d.Images) == 0 {
			return nil, fmt.Errorf("gallery requires at least one image")
		}
		for i, img := range d.Images {
			if img.Src == "" {
				return nil, fmt.Errorf("gallery image %d is missing src", i)
			}
		}
		return &d, nil
	case RendererPage:
		var d PageData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("malformed page data: %w", err)
		}
		return &d, nil
	case RendererHeading:
		var d HeadingData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("malformed heading data: %w", err)
		}
		if strings.TrimSpace(d.Text) == "" {
			return nil, fmt.Errorf("heading text is required")
		}
		if d.Level != 0 && (d.Level < 1 || d.Level > 6) {
			return nil, fmt.Errorf("heading level must be 1-6, got %d", d.Level)
		}
		return &d, nil
	case RendererText:
		var d TextData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("malformed text data: %w", err)
		}
		if d.Text == "" {
			return nil, fmt.Errorf("text is required")
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", renderer)
	}
}

// EncodeBlockData marshals a validated variant back into the stored form.
func EncodeBlockData(data any) (datatypes.JSON, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func validateDestinationURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("redirect url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("redirect url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("redirect url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("redirect url is missing a host")
	}
	return nil
}
