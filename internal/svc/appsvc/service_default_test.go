package appsvc

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/appstore/internal/svc/apprepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
)

var (
	owner     = policy.Actor{ID: 100, Role: policy.RoleDeveloper}
	stranger  = policy.Actor{ID: 200, Role: policy.RoleDeveloper}
	moderator = policy.Actor{ID: 300, Role: policy.RoleAdmin}
)

func newService(t *testing.T) (*DefaultService, *memAppRepo) {
	repo := newMemAppRepo()
	svc, err := New(DefaultServiceConfig{
		UIDGen:  &seqUID{},
		AppRepo: repo,
	})
	require.NoError(t, err)
	return svc, repo
}

func validFields() AppFields {
	return AppFields{
		Name:             locale.Text{EN: "Foo Calculator", TH: "เครื่องคิดเลข", ZH: "计算器"},
		Description:      locale.Text{EN: "Calculates things"},
		ShortDescription: locale.Text{EN: "Calc"},
		Category:         "tools",
		Version:          "1.0.0",
		DownloadURL:      "https://example.com/foo.apk",
		Icon:             "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png")),
		Tags:             []string{"calc", " ", "math"},
	}
}

func createApp(t *testing.T, svc *DefaultService) App {
	out, err := svc.Create(context.Background(), InputCreate{Actor: owner, Fields: validFields()})
	require.NoError(t, err)
	return out.App
}

func TestNew(t *testing.T) {
	_, err := New(DefaultServiceConfig{})
	assert.Error(t, err)
}

func TestDefaultService_Create(t *testing.T) {
	t.Run("forced pending", func(t *testing.T) {
		svc, _ := newService(t)

		app := createApp(t, svc)
		assert.Equal(t, apprepo.StatusPending, app.Status)
		assert.False(t, app.Featured)
		assert.Equal(t, owner.ID, app.DeveloperID)
		assert.Zero(t, app.Rating)
		assert.Zero(t, app.TotalRatings)
		assert.Zero(t, app.Downloads)
		assert.Nil(t, app.PublishedAt)
		assert.Equal(t, []string{"calc", "math"}, app.Tags)
		assert.Equal(t, []string{}, app.Screenshots)
	})

	t.Run("required fields", func(t *testing.T) {
		svc, repo := newService(t)

		testCases := []struct {
			Field  string
			Modify func(f *AppFields)
		}{
			{"name", func(f *AppFields) { f.Name = locale.Text{EN: " "} }},
			{"description", func(f *AppFields) { f.Description = locale.Text{} }},
			{"shortDescription", func(f *AppFields) { f.ShortDescription = locale.Text{} }},
			{"category", func(f *AppFields) { f.Category = "" }},
			{"version", func(f *AppFields) { f.Version = " " }},
			{"downloadUrl", func(f *AppFields) { f.DownloadURL = "" }},
		}

		for _, tc := range testCases {
			t.Run(tc.Field, func(t *testing.T) {
				fields := validFields()
				tc.Modify(&fields)

				_, err := svc.Create(context.Background(), InputCreate{Actor: owner, Fields: fields})
				assert.True(t, svcerr.Is(err, svcerr.KindInvalidInput))
				assert.Equal(t, tc.Field+" is required", err.Error())
			})
		}

		assert.Zero(t, repo.writes)
	})

	t.Run("field length", func(t *testing.T) {
		svc, repo := newService(t)
		long := strings.Repeat("x", MaxShortFieldLen+1)

		testCases := []struct {
			Field  string
			Modify func(f *AppFields)
		}{
			{"category", func(f *AppFields) { f.Category = long }},
			{"version", func(f *AppFields) { f.Version = long }},
			{"size", func(f *AppFields) { f.Size = long }},
		}

		for _, tc := range testCases {
			t.Run(tc.Field, func(t *testing.T) {
				fields := validFields()
				tc.Modify(&fields)

				_, err := svc.Create(context.Background(), InputCreate{Actor: owner, Fields: fields})
				assert.True(t, svcerr.Is(err, svcerr.KindInvalidInput))
				assert.Equal(t, tc.Field+" must be at most 64 characters", err.Error())
			})
		}

		assert.Zero(t, repo.writes)

		// the limit counts characters, not bytes
		fields := validFields()
		fields.Category = strings.Repeat("ไทย", MaxShortFieldLen/3)
		_, err := svc.Create(context.Background(), InputCreate{Actor: owner, Fields: fields})
		assert.NoError(t, err)
	})

	t.Run("image validation", func(t *testing.T) {
		svc, _ := newService(t)

		fields := validFields()
		fields.Icon = "https://example.com/icon.png"
		_, err := svc.Create(context.Background(), InputCreate{Actor: owner, Fields: fields})
		assert.True(t, svcerr.Is(err, svcerr.KindInvalidInput))

		fields = validFields()
		big := make([]byte, DefaultImageMaxBytes+1)
		fields.Screenshots = []string{"data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(big)}
		_, err = svc.Create(context.Background(), InputCreate{Actor: owner, Fields: fields})
		assert.True(t, svcerr.Is(err, svcerr.KindInvalidInput))
		assert.True(t, strings.HasPrefix(err.Error(), "screenshots[0]"))
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Create(context.Background(), InputCreate{Fields: validFields()})
		assert.True(t, svcerr.Is(err, svcerr.KindUnauthorized))
	})
}

func TestDefaultService_Update(t *testing.T) {
	ctx := context.Background()
	approved := apprepo.StatusApproved
	featured := true

	t.Run("owner cannot moderate", func(t *testing.T) {
		svc, _ := newService(t)
		app := createApp(t, svc)

		version := "1.1.0"
		out, err := svc.Update(ctx, InputUpdate{
			ID:    app.ID,
			Actor: owner,
			Patch: AppPatch{Version: &version, Status: &approved, Featured: &featured},
		})
		require.NoError(t, err)
		assert.Equal(t, "1.1.0", out.App.Version)
		assert.Equal(t, apprepo.StatusPending, out.App.Status)
		assert.False(t, out.App.Featured)
		assert.Equal(t, app.Name, out.App.Name)
	})

	t.Run("non-owner is forbidden and nothing is written", func(t *testing.T) {
		svc, repo := newService(t)
		app := createApp(t, svc)
		writes := repo.writes

		version := "6.6.6"
		_, err := svc.Update(ctx, InputUpdate{ID: app.ID, Actor: stranger, Patch: AppPatch{Version: &version}})
		assert.True(t, svcerr.Is(err, svcerr.KindForbidden))

		_, err = svc.Delete(ctx, InputDelete{ID: app.ID, Actor: stranger})
		assert.True(t, svcerr.Is(err, svcerr.KindForbidden))

		assert.Equal(t, writes, repo.writes)
	})

	t.Run("admin approval publishes app", func(t *testing.T) {
		svc, _ := newService(t)
		app := createApp(t, svc)

		listed, err := svc.List(ctx, InputList{})
		require.NoError(t, err)
		assert.Empty(t, listed.Apps)

		out, err := svc.Update(ctx, InputUpdate{
			ID:    app.ID,
			Actor: moderator,
			Patch: AppPatch{Status: &approved, Featured: &featured},
		})
		require.NoError(t, err)
		assert.Equal(t, apprepo.StatusApproved, out.App.Status)
		assert.True(t, out.App.Featured)
		require.NotNil(t, out.App.PublishedAt)
		firstPublished := *out.App.PublishedAt

		listed, err = svc.List(ctx, InputList{Featured: true})
		require.NoError(t, err)
		require.Len(t, listed.Apps, 1)
		assert.Equal(t, app.ID, listed.Apps[0].ID)

		suspended, approvedAgain := apprepo.StatusSuspended, apprepo.StatusApproved
		_, err = svc.Update(ctx, InputUpdate{ID: app.ID, Actor: moderator, Patch: AppPatch{Status: &suspended}})
		require.NoError(t, err)
		out, err = svc.Update(ctx, InputUpdate{ID: app.ID, Actor: moderator, Patch: AppPatch{Status: &approvedAgain}})
		require.NoError(t, err)
		assert.Equal(t, firstPublished, *out.App.PublishedAt)
	})

	t.Run("admin invalid status", func(t *testing.T) {
		svc, _ := newService(t)
		app := createApp(t, svc)

		bad := "published"
		_, err := svc.Update(ctx, InputUpdate{ID: app.ID, Actor: moderator, Patch: AppPatch{Status: &bad}})
		assert.True(t, svcerr.Is(err, svcerr.KindInvalidInput))
	})

	t.Run("required field cannot be blanked", func(t *testing.T) {
		svc, _ := newService(t)
		app := createApp(t, svc)

		blank := ""
		_, err := svc.Update(ctx, InputUpdate{ID: app.ID, Actor: owner, Patch: AppPatch{DownloadURL: &blank}})
		assert.True(t, svcerr.Is(err, svcerr.KindInvalidInput))
	})

	t.Run("too long version", func(t *testing.T) {
		svc, repo := newService(t)
		app := createApp(t, svc)
		writes := repo.writes

		long := strings.Repeat("9", MaxShortFieldLen+1)
		_, err := svc.Update(ctx, InputUpdate{ID: app.ID, Actor: owner, Patch: AppPatch{Version: &long}})
		assert.True(t, svcerr.Is(err, svcerr.KindInvalidInput))
		assert.Equal(t, writes, repo.writes)
	})

	t.Run("missing app", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Update(ctx, InputUpdate{ID: 404, Actor: moderator})
		assert.True(t, svcerr.Is(err, svcerr.KindNotFound))
		assert.Equal(t, "app not found", err.Error())
	})
}

func TestDefaultService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	app := createApp(t, svc)
	out, err := svc.Delete(ctx, InputDelete{ID: app.ID, Actor: moderator})
	require.NoError(t, err)
	assert.True(t, out.Success)

	_, err = svc.Get(ctx, InputGet{ID: app.ID})
	assert.True(t, svcerr.Is(err, svcerr.KindNotFound))

	_, err = svc.Delete(ctx, InputDelete{ID: app.ID, Actor: owner})
	assert.True(t, svcerr.Is(err, svcerr.KindNotFound))
}

func TestDefaultService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	testCases := []struct {
		In    InputList
		Limit int64
		Skip  int64
	}{
		{InputList{}, DefaultListLimit, 0},
		{InputList{Limit: -5, Skip: -1}, DefaultListLimit, 0},
		{InputList{Limit: 1000, Skip: 40}, MaxListLimit, 40},
		{InputList{Limit: 7, Sort: "popular", Query: "foo", Category: "games"}, 7, 0},
	}

	for _, tc := range testCases {
		_, err := svc.List(ctx, tc.In)
		require.NoError(t, err)
		assert.Equal(t, apprepo.StatusApproved, repo.lastList.Status)
		assert.Equal(t, tc.Limit, repo.lastList.Limit)
		assert.Equal(t, tc.Skip, repo.lastList.Skip)
		assert.Equal(t, tc.In.Sort, repo.lastList.Sort)
		assert.Equal(t, tc.In.Query, repo.lastList.Query)
	}
}

func TestDefaultService_ListByStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)
	createApp(t, svc)

	out, err := svc.ListByStatus(ctx, InputListByStatus{})
	require.NoError(t, err)
	assert.Len(t, out.Apps, 1)
	assert.Equal(t, apprepo.StatusPending, repo.lastList.Status)

	_, err = svc.ListByStatus(ctx, InputListByStatus{Status: "deleted"})
	assert.True(t, svcerr.Is(err, svcerr.KindInvalidInput))
}

func TestDefaultService_ListByOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	createApp(t, svc)
	createApp(t, svc)

	out, err := svc.ListByOwner(ctx, InputListByOwner{AccountID: owner.ID})
	require.NoError(t, err)
	assert.Len(t, out.Apps, 2)

	out, err = svc.ListByOwner(ctx, InputListByOwner{AccountID: stranger.ID})
	require.NoError(t, err)
	assert.Empty(t, out.Apps)
}

func TestDefaultService_IncrementDownloads(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	app := createApp(t, svc)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.IncrementDownloads(ctx, InputIncrementDownloads{ID: app.ID})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, InputGet{ID: app.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.App.Downloads)

	_, err = svc.IncrementDownloads(ctx, InputIncrementDownloads{ID: 999})
	assert.True(t, svcerr.Is(err, svcerr.KindNotFound))
}
