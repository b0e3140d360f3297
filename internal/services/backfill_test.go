package services_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meme-gallery-backend/internal/services"
)

func TestBackfillService_MigrateInlineImages(t *testing.T) {
	f := newFixture()
	inline := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	f.seedPhoto("p1", "user_a", inline)
	f.seedPhoto("p2", "", inline)
	f.seedPhoto("p3", "user_a", publicBase+"/user_a/already.png")
	f.seedPhoto("p4", "user_a", "data:image/png;base64,!!!not-base64")
	svg := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`
	f.seedPhoto("p5", "user_a", "data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString([]byte(svg)))

	svc := services.NewBackfillService(f.db, f.store)
	report, err := svc.MigrateInlineImages(context.Background())
	require.NoError(t, err)

	assert.Equal(t, services.BackfillReport{Scanned: 5, Migrated: 2, Skipped: 1, Failed: 2}, report)
	assert.Equal(t, []string{"legacy/p2.png", "user_a/p1.png"}, f.store.Keys())
	assert.Equal(t, pngBytes, f.store.Objects["user_a/p1.png"])

	p1, err := f.db.GetPhoto("p1")
	require.NoError(t, err)
	assert.Equal(t, publicBase+"/user_a/p1.png", p1.ImageData)

	p4, err := f.db.GetPhoto("p4")
	require.NoError(t, err)
	assert.True(t, p4.IsInline())

	p5, err := f.db.GetPhoto("p5")
	require.NoError(t, err)
	assert.True(t, p5.IsInline())
}

func TestBackfillService_RewriteImageURLs(t *testing.T) {
	f := newFixture()
	f.seedPhoto("p1", "u", "https://old-bucket.example.com/u/1.png")
	f.seedPhoto("p2", "u", "https://https://pub-test.r2.dev/u/2.png")
	f.seedPhoto("p3", "u", publicBase+"/u/3.png")
	f.seedPhoto("p4", "u", "data:image/png;base64,AAAA")

	svc := services.NewBackfillService(f.db, f.store)
	report, err := svc.RewriteImageURLs([]string{"OLD-BUCKET.example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Migrated)
	assert.Equal(t, 2, report.Skipped)

	p1, _ := f.db.GetPhoto("p1")
	assert.Equal(t, publicBase+"/u/1.png", p1.ImageData)
	p2, _ := f.db.GetPhoto("p2")
	assert.Equal(t, publicBase+"/u/2.png", p2.ImageData)
}
