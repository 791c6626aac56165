package pages

import (
	"bytes"
	"encoding/json"

	"github.com/dalemusser/stratasite/internal/app/system/contentops"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/domain/models"
)

type pageResponse struct {
	ID              string  `json:"id"`
	Slug            string  `json:"slug"`
	Title           string  `json:"title"`
	MetaTitle       *string `json:"metaTitle"`
	MetaDescription *string `json:"metaDescription"`
	ShowInNav       bool    `json:"showInNav"`
	NavOrder        int     `json:"navOrder"`
	NavTitle        *string `json:"navTitle"`
	UpdatedAt       string  `json:"updatedAt"`
}

type sectionResponse struct {
	Key       string         `json:"key"`
	Type      string         `json:"type"`
	Title     *string        `json:"title"`
	Content   map[string]any `json:"content"`
	SortOrder int            `json:"sortOrder"`
	UpdatedAt string         `json:"updatedAt"`
}

func newPageResponse(p models.Page) pageResponse {
	return pageResponse{
		ID:              p.ID.Hex(),
		Slug:            p.Slug,
		Title:           p.Title,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		ShowInNav:       p.ShowInNav,
		NavOrder:        p.NavOrder,
		NavTitle:        p.NavTitle,
		UpdatedAt:       jsonutil.Time(p.UpdatedAt),
	}
}

// newPageDetail includes the sections; an empty page still gets "sections": [].
func newPageDetail(v contentops.PageView) pageDetail {
	secs := make([]sectionResponse, 0, len(v.Sections))
	for _, s := range v.Sections {
		secs = append(secs, newSectionResponse(s))
	}
	return pageDetail{pageResponse: newPageResponse(v.Page), Sections: secs}
}

type pageDetail struct {
	pageResponse
	Sections []sectionResponse `json:"sections"`
}

func newSectionResponse(s models.Section) sectionResponse {
	content := s.Content
	if content == nil {
		content = map[string]any{}
	}
	return sectionResponse{
		Key:       s.SectionKey,
		Type:      s.Type,
		Title:     s.Title,
		Content:   content,
		SortOrder: s.SortOrder,
		UpdatedAt: jsonutil.Time(s.UpdatedAt),
	}
}

// publicPage is the document served to the site front end.
type publicPage struct {
	Slug            string         `json:"slug"`
	Title           string         `json:"title"`
	MetaTitle       *string        `json:"metaTitle"`
	MetaDescription *string        `json:"metaDescription"`
	Sections        publicSections `json:"sections"`
}

type publicSection struct {
	Title   *string        `json:"title"`
	Content map[string]any `json:"content"`
}

type keyedSection struct {
	key string
	publicSection
}

// publicSections encodes as a JSON object keyed by section key whose members
// keep the sections' render order.
type publicSections []keyedSection

func (ps publicSections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(s.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.publicSection)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func newPublicPage(v contentops.PageView) publicPage {
	secs := make(publicSections, 0, len(v.Sections))
	for _, s := range v.Sections {
		content := s.Content
		if content == nil {
			content = map[string]any{}
		}
		secs = append(secs, keyedSection{key: s.SectionKey, publicSection: publicSection{Title: s.Title, Content: content}})
	}
	return publicPage{
		Slug:            v.Page.Slug,
		Title:           v.Page.Title,
		MetaTitle:       v.Page.MetaTitle,
		MetaDescription: v.Page.MetaDescription,
		Sections:        secs,
	}
}
