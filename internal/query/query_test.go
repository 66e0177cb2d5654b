package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tman-org/tman/internal/query"
	"github.com/tman-org/tman/internal/tool"
)

func fixture() []*tool.Tool {
	update := int64(1700000000)
	widget := tool.NewRepository("https://github.com/acme/widget", "/opt/tools",
		tool.WithTags([]string{"recon", "dns"}),
		tool.WithDates(nil, nil, &update))
	gadget := tool.NewRepository("https://github.com/acme/gadget", "/opt/tools",
		tool.WithTags([]string{"recon"}))
	notes := tool.NewLocalFile("/home/user/notes", tool.WithTags([]string{"docs"}))
	return []*tool.Tool{widget, gadget, notes}
}

func names(tools []*tool.Tool) []string {
	var out []string
	for _, t := range tools {
		out = append(out, t.Name)
	}
	return out
}

func TestFind(t *testing.T) {
	t.Parallel()

	tools := fixture()

	t.Run("ByURLNormalized", func(t *testing.T) {
		t.Parallel()
		// Query URL without the .git suffix still matches.
		found := query.Find(tools, query.Criteria{URL: "https://github.com/acme/widget"})
		assert.Equal(t, []string{"widget"}, names(found))
	})

	t.Run("ByTagSubset", func(t *testing.T) {
		t.Parallel()
		found := query.Find(tools, query.Criteria{Tags: []string{"recon"}})
		assert.Equal(t, []string{"widget", "gadget"}, names(found))

		found = query.Find(tools, query.Criteria{Tags: []string{"recon", "dns"}})
		assert.Equal(t, []string{"widget"}, names(found))
	})

	t.Run("TagsCaseInsensitive", func(t *testing.T) {
		t.Parallel()
		found := query.Find(tools, query.Criteria{Tags: []string{"RECON"}})
		assert.Equal(t, []string{"widget", "gadget"}, names(found))
	})

	t.Run("ByExactName", func(t *testing.T) {
		t.Parallel()
		found := query.Find(tools, query.Criteria{Names: []string{"widget"}})
		assert.Equal(t, []string{"widget"}, names(found))

		found = query.Find(tools, query.Criteria{Names: []string{"widg"}})
		assert.Empty(t, found)
	})

	t.Run("ByFlexibleName", func(t *testing.T) {
		t.Parallel()
		found := query.Find(tools, query.Criteria{Names: []string{"GET"}, FlexibleName: true})
		assert.Equal(t, []string{"gadget"}, names(found))
	})

	t.Run("ByKind", func(t *testing.T) {
		t.Parallel()
		found := query.Find(tools, query.Criteria{Kinds: []tool.Kind{tool.KindLocal}})
		assert.Equal(t, []string{"notes"}, names(found))
	})

	t.Run("ByUpdatedAfter", func(t *testing.T) {
		t.Parallel()
		threshold := int64(1600000000)
		found := query.Find(tools, query.Criteria{UpdatedAfter: &threshold})
		assert.Equal(t, []string{"widget"}, names(found))

		// A nil last-update date never matches a date criterion.
		threshold = 0
		found = query.Find(tools, query.Criteria{UpdatedAfter: &threshold})
		assert.Equal(t, []string{"widget"}, names(found))
	})

	t.Run("CriteriaAreANDed", func(t *testing.T) {
		t.Parallel()
		found := query.Find(tools, query.Criteria{
			Tags:  []string{"recon"},
			Names: []string{"gadget"},
		})
		assert.Equal(t, []string{"gadget"}, names(found))

		found = query.Find(tools, query.Criteria{
			Tags:  []string{"docs"},
			Kinds: []tool.Kind{tool.KindGit},
		})
		assert.Empty(t, found)
	})

	t.Run("ZeroCriteriaMatchesAll", func(t *testing.T) {
		t.Parallel()
		found := query.Find(tools, query.Criteria{})
		require.Len(t, found, 3)
	})
}

func TestIsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, query.Criteria{}.IsZero())
	assert.True(t, query.Criteria{FlexibleName: true}.IsZero())
	assert.False(t, query.Criteria{URL: "x"}.IsZero())
	assert.False(t, query.Criteria{Names: []string{"x"}}.IsZero())
}

func TestParseKinds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []tool.Kind{tool.KindGit}, query.ParseKinds("git"))
	assert.Equal(t, []tool.Kind{tool.KindGit, tool.KindLocal}, query.ParseKinds("git, local"))
	assert.Equal(t, []tool.Kind{tool.KindLocal}, query.ParseKinds("local,local,bogus"))
	assert.Empty(t, query.ParseKinds("bogus"))
}
