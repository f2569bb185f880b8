package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/schoolsite/pkg/schoolsite"
	"github.com/tendant/schoolsite/pkg/schoolsite/repo/memory"
)

func TestRepository_SaveGet(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	slide := &schoolsite.HeroSlide{Title: "Welcome", Image: "hero/a.jpg"}
	require.NoError(t, repo.Save(ctx, slide))
	assert.Equal(t, int64(1), slide.ID)

	got, err := repo.Get(ctx, schoolsite.KindHeroSlide, slide.ID)
	require.NoError(t, err)
	assert.Equal(t, slide, got)

	// Returned records are copies
	got.(*schoolsite.HeroSlide).Title = "changed"
	again, _ := repo.Get(ctx, schoolsite.KindHeroSlide, slide.ID)
	assert.Equal(t, "Welcome", again.(*schoolsite.HeroSlide).Title)

	slide.Title = "Updated"
	require.NoError(t, repo.Save(ctx, slide))
	again, _ = repo.Get(ctx, schoolsite.KindHeroSlide, slide.ID)
	assert.Equal(t, "Updated", again.(*schoolsite.HeroSlide).Title)
}

func TestRepository_NotFound(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	_, err := repo.Get(ctx, schoolsite.KindAbout, 42)
	assert.ErrorIs(t, err, schoolsite.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Save(ctx, &schoolsite.About{ID: 42}), schoolsite.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, schoolsite.KindAbout, 42), schoolsite.ErrRecordNotFound)

	_, err = repo.List(ctx, schoolsite.Kind("nope"), schoolsite.ListFilter{})
	assert.ErrorIs(t, err, schoolsite.ErrUnknownKind)
}

func TestRepository_ListOrdering(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	for _, s := range []*schoolsite.Stat{
		{Number: "3", Label: "c", Order: 2},
		{Number: "1", Label: "a", Order: 0},
		{Number: "2", Label: "b", Order: 1},
	} {
		require.NoError(t, repo.Save(ctx, s))
	}

	stats, err := repo.List(ctx, schoolsite.KindStat, schoolsite.ListFilter{})
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "a", stats[0].(*schoolsite.Stat).Label)
	assert.Equal(t, "b", stats[1].(*schoolsite.Stat).Label)
	assert.Equal(t, "c", stats[2].(*schoolsite.Stat).Label)
}

func TestRepository_CertificateFilterAndOrder(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	certs := []*schoolsite.Certificate{
		{Title: "old", Category: "teachers", Level: "city", CreatedAt: base},
		{Title: "new", Category: "teachers", Level: "city", CreatedAt: base.Add(time.Hour)},
		{Title: "first", Category: "teachers", Level: "district", Order: -1, CreatedAt: base},
		{Title: "student", Category: "students", Level: "city", CreatedAt: base},
	}
	for _, c := range certs {
		require.NoError(t, repo.Save(ctx, c))
	}

	teachers, err := repo.List(ctx, schoolsite.KindCertificate, schoolsite.ListFilter{Category: "teachers"})
	require.NoError(t, err)
	require.Len(t, teachers, 3)
	assert.Equal(t, "first", teachers[0].(*schoolsite.Certificate).Title)
	assert.Equal(t, "new", teachers[1].(*schoolsite.Certificate).Title)
	assert.Equal(t, "old", teachers[2].(*schoolsite.Certificate).Title)

	city, err := repo.List(ctx, schoolsite.KindCertificate, schoolsite.ListFilter{Category: "teachers", Level: "city"})
	require.NoError(t, err)
	assert.Len(t, city, 2)
}

func TestRepository_PageSlugUnique(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &schoolsite.Page{Slug: "history", Title: "History"}))
	err := repo.Save(ctx, &schoolsite.Page{Slug: "history", Title: "Again"})
	assert.ErrorIs(t, err, schoolsite.ErrDuplicate)
}

func TestRepository_SavePageWithImages(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	page := &schoolsite.Page{Slug: "gallery", Title: "Gallery"}
	images := []*schoolsite.ImageBlock{
		{Image: "images/a.jpg", Order: 0},
		{Image: "images/b.jpg", Order: 1},
	}
	require.NoError(t, repo.SavePageWithImages(ctx, page, images, nil))
	require.NotZero(t, page.ID)

	blocks, err := repo.List(ctx, schoolsite.KindImageBlock, schoolsite.ListFilter{PageID: page.ID})
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, page.ID, blocks[0].(*schoolsite.ImageBlock).PageID)

	// Delete one, update the other
	images[1].Caption = "B"
	require.NoError(t, repo.SavePageWithImages(ctx, page, images[1:], []int64{images[0].ID}))
	blocks, _ = repo.List(ctx, schoolsite.KindImageBlock, schoolsite.ListFilter{PageID: page.ID})
	require.Len(t, blocks, 1)
	assert.Equal(t, "B", blocks[0].(*schoolsite.ImageBlock).Caption)

	// Unknown deleted ID aborts without writing
	page.Title = "Renamed"
	err = repo.SavePageWithImages(ctx, page, nil, []int64{999})
	assert.ErrorIs(t, err, schoolsite.ErrRecordNotFound)
	stored, _ := repo.Get(ctx, schoolsite.KindPage, page.ID)
	assert.Equal(t, "Gallery", stored.(*schoolsite.Page).Title)
}

func TestRepository_DeleteCascades(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	page := &schoolsite.Page{Slug: "p", Title: "P"}
	require.NoError(t, repo.SavePageWithImages(ctx, page, []*schoolsite.ImageBlock{{Image: "images/x.jpg"}}, nil))
	require.NoError(t, repo.Delete(ctx, schoolsite.KindPage, page.ID))

	blocks, err := repo.List(ctx, schoolsite.KindImageBlock, schoolsite.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, blocks)

	link := &schoolsite.NavLink{Name: "Home", Href: "/"}
	require.NoError(t, repo.Save(ctx, link))
	header := &schoolsite.Header{NavLinkIDs: []int64{link.ID}}
	require.NoError(t, repo.Save(ctx, header))

	require.NoError(t, repo.Delete(ctx, schoolsite.KindNavLink, link.ID))
	h, _ := repo.Get(ctx, schoolsite.KindHeader, header.ID)
	assert.Empty(t, h.(*schoolsite.Header).NavLinkIDs)
}

func TestRepository_HeaderRequiresKnownLinks(t *testing.T) {
	repo := memory.New()
	err := repo.Save(context.Background(), &schoolsite.Header{NavLinkIDs: []int64{7}})
	assert.ErrorIs(t, err, schoolsite.ErrRecordNotFound)
}
