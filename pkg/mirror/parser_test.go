package mirror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Sure! Here it is:\n{\"a\":1}\nHope this helps.", `{"a":1}`},
		{"trailing commas", `{"a":[1,2,],"b":{"c":3,},}`, `{"a":[1,2],"b":{"c":3}}`},
		{"nested braces kept", `x {"a":{"b":{}}} y`, `{"a":{"b":{}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestParse_ValidDocument(t *testing.T) {
	raw := "```json\n" + `{
  "title": "  Seasons of Waiting ",
  "screens": [
    {"type": "Opening", "heading": "Hello", "body": "You have been carrying a lot."},
    {"type": "scripture", "heading": "A word", "body": "Be still.", "scripture": "Psalm 46:10"},
    {"type": "theme", "heading": "Empty", "body": "   "},
  ]
}` + "\n```"

	doc, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Seasons of Waiting", doc.Title)
	require.Len(t, doc.Screens, 2)
	assert.Equal(t, ScreenOpening, doc.Screens[0].Type)
	assert.Equal(t, "Psalm 46:10", doc.Screens[1].Scripture)
}

func TestParse_DefaultsTitleAndType(t *testing.T) {
	doc, err := Parse(`{"screens":[{"heading":"Rest","body":"You need rest."}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Rest", doc.Title)
	assert.Equal(t, ScreenReflection, doc.Screens[0].Type)

	doc, err = Parse(`{"screens":[{"body":"You need rest."}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Your Mirror", doc.Title)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrMalformed},
		{"not json", "I'd rather not.", ErrMalformed},
		{"refused", `{"refused": true, "reason": "self-harm"}`, ErrRefused},
		{"refused no reason", `{"refused": true}`, ErrRefused},
		{"no screens", `{"title":"x","screens":[]}`, ErrNoScreens},
		{"only blank screens", `{"title":"x","screens":[{"body":""}]}`, ErrNoScreens},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
