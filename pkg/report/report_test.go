package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorKindMatching(t *testing.T) {
	err := Errorf(FontLoadingFailed, "no face for %q", "Inter")
	assert.True(t, errors.Is(err, ErrFontLoading))
	assert.False(t, errors.Is(err, ErrImageDecode))

	wrapped := Wrap(ImageDecodeFailed, "logo.png", errors.New("bad header"))
	assert.True(t, errors.Is(wrapped, ErrImageDecode))
	assert.Contains(t, wrapped.Error(), "bad header")
}

func TestFatalKinds(t *testing.T) {
	assert.True(t, InvalidStyledDom.Fatal())
	assert.True(t, InvalidTree.Fatal())
	assert.False(t, FontLoadingFailed.Fatal())
	assert.False(t, LayoutBudgetExceeded.Fatal())
}

func TestChannelTopicFilter(t *testing.T) {
	c := NewChannel(zap.NewNop(), TopicLayout)

	c.Debugf(TopicLayout, "solved %d nodes", 3)
	c.Debugf(TopicText, "filtered out")
	c.Report(TopicImages, Errorf(ImageDecodeFailed, "x.png"))

	msgs := c.Recent()
	require.Len(t, msgs, 2)
	assert.Equal(t, "solved 3 nodes", msgs[0].Text)
	assert.Equal(t, TopicImages, msgs[1].Topic)
	assert.NotNil(t, msgs[1].Err)
}

func TestChannelRingWraps(t *testing.T) {
	c := NewChannel(nil, "*")
	for i := 0; i < defaultRingSize+10; i++ {
		c.Debugf(TopicLayout, "m%d", i)
	}
	msgs := c.Recent()
	require.Len(t, msgs, defaultRingSize)
	assert.Equal(t, "m10", msgs[0].Text)
	assert.Equal(t, "m137", msgs[len(msgs)-1].Text)
}
