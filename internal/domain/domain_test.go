package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepo_FullName(t *testing.T) {
	repo := Repo{Owner: "acme", Name: "widgets"}
	assert.Equal(t, "acme/widgets", repo.FullName())
}

func TestDayCount_String(t *testing.T) {
	assert.Equal(t, "N/A", DayCount{}.String())
	assert.Equal(t, "0", Days(0).String())
	assert.Equal(t, "365", Days(365).String())
}

func TestChannelSet(t *testing.T) {
	set := make(ChannelSet)
	assert.False(t, set.Has(ChannelCode))

	set.Add(ChannelCode)
	set.Add(ChannelCode)
	set.Add(ChannelIssues)

	assert.True(t, set.Has(ChannelCode))
	assert.True(t, set.Has(ChannelIssues))
	assert.False(t, set.Has(ChannelComments))
	assert.Len(t, set, 2)
}
