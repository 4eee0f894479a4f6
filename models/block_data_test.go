package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestDecodeRedirectData(t *testing.T) {
	data, err := DecodeBlockData(RendererRedirect, datatypes.JSON(`{"url":"https://example.com","statusCode":302}`))
	require.NoError(t, err)

	redirect := data.(*RedirectData)
	assert.Equal(t, "https://example.com", redirect.URL)
	assert.Equal(t, 302, redirect.StatusCode)
}

func TestDecodeRedirectDataRejectsBadDestinations(t *testing.T) {
	cases := map[string]string{
		"missing url":      `{}`,
		"relative url":     `{"url":"/local/path"}`,
		"ftp scheme":       `{"url":"ftp://example.com/file"}`,
		"javascript":       `{"url":"javascript:alert(1)"}`,
		"no host":          `{"url":"https://"}`,
		"non-3xx status":   `{"url":"https://example.com","statusCode":200}`,
		"out of range":     `{"url":"https://example.com","statusCode":999}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeBlockData(RendererRedirect, datatypes.JSON(raw))
			assert.Error(t, err)
		})
	}
}

func TestDecodeArticleData(t *testing.T) {
	data, err := DecodeBlockData(RendererArticle, datatypes.JSON(`{"title":"Hello","content":"<p>World</p>"}`))
	require.NoError(t, err)
	assert.Equal(t, "Hello", data.(*ArticleData).Title)

	_, err = DecodeBlockData(RendererArticle, datatypes.JSON(`{"title":"  ","content":"x"}`))
	assert.Error(t, err)

	_, err = DecodeBlockData(RendererArticle, datatypes.JSON(`{"title":"x","content":""}`))
	assert.Error(t, err)
}

func TestDecodeGalleryData(t *testing.T) {
	_, err := DecodeBlockData(RendererGallery, datatypes.JSON(`{"images":[]}`))
	assert.Error(t, err)

	_, err = DecodeBlockData(RendererGallery, datatypes.JSON(`{"images":[{"alt":"no src"}]}`))
	assert.Error(t, err)

	data, err := DecodeBlockData(RendererGallery, datatypes.JSON(`{"images":[{"src":"/a.jpg"},{"src":"/b.jpg"}]}`))
	require.NoError(t, err)
	assert.Len(t, data.(*GalleryData).Images, 2)
}

func TestDecodeHeadingData(t *testing.T) {
	data, err := DecodeBlockData(RendererHeading, datatypes.JSON(`{"text":"Intro","level":2}`))
	require.NoError(t, err)
	assert.Equal(t, 2, data.(*HeadingData).Level)

	_, err = DecodeBlockData(RendererHeading, datatypes.JSON(`{"text":"Intro","level":7}`))
	assert.Error(t, err)

	_, err = DecodeBlockData(RendererHeading, datatypes.JSON(`{"text":""}`))
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownRendererAndEmptyData(t *testing.T) {
	_, err := DecodeBlockData("video", datatypes.JSON(`{"src":"x"}`))
	assert.Error(t, err)

	_, err = DecodeBlockData(RendererText, nil)
	assert.Error(t, err)
}

func TestEncodeBlockDataRoundTrip(t *testing.T) {
	raw, err := EncodeBlockData(&ArticleData{Title: "T", Content: "C", ReadingTime: 3})
	require.NoError(t, err)

	data, err := DecodeBlockData(RendererArticle, raw)
	require.NoError(t, err)
	assert.Equal(t, 3, data.(*ArticleData).ReadingTime)
}

func TestMergeJSON(t *testing.T) {
	base := datatypes.JSON(`{"theme":"dark","width":"full"}`)
	overlay := datatypes.JSON(`{"width":"half","align":"left"}`)

	merged, err := MergeJSON(base, overlay)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark","width":"half","align":"left"}`, string(merged))
}

func TestMergeJSONEmptySides(t *testing.T) {
	base := datatypes.JSON(`{"a":1}`)

	merged, err := MergeJSON(base, nil)
	require.NoError(t, err)
	assert.Equal(t, base, merged)

	merged, err = MergeJSON(nil, base)
	require.NoError(t, err)
	assert.Equal(t, base, merged)
}

func TestMergeJSONRejectsNonObjects(t *testing.T) {
	_, err := MergeJSON(datatypes.JSON(`[1,2]`), datatypes.JSON(`{"a":1}`))
	assert.Error(t, err)
}

func TestValidRenderer(t *testing.T) {
	for _, tag := range []string{
		RendererRedirect, RendererArticle, RendererImage, RendererCard,
		RendererGallery, RendererPage, RendererHeading, RendererText,
	} {
		assert.True(t, ValidRenderer(tag))
	}
	assert.False(t, ValidRenderer("video"))
	assert.False(t, ValidRenderer(""))
}
