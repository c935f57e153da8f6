package genapidoc

import (
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/transport/restapi/handlerapp"
	"github.com/yusufsyaifudin/appstore/transport/restapi/handlerauth"
	"github.com/yusufsyaifudin/appstore/transport/restapi/handlerchangelog"
	"github.com/yusufsyaifudin/appstore/transport/restapi/handlerrating"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httptyped"
)

const (
	tagAuth      = "Auth"
	tagApp       = "Application"
	tagChangelog = "Changelog"
	tagAdmin     = "Admin"
	tagSystem    = "System"
)

var (
	exampleTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	exampleText = locale.Text{EN: "Calculator", TH: "เครื่องคิดเลข", ZH: "计算器"}

	exampleAccount = httptyped.Account{
		ID:         412709836219138049,
		Email:      "dev@example.com",
		Name:       "Developer",
		Role:       "developer",
		Language:   "en",
		IsVerified: true,
		CreatedAt:  exampleTime,
		UpdatedAt:  exampleTime,
	}

	exampleApp = httptyped.App{
		ID:               412709836219138050,
		DeveloperID:      exampleAccount.ID,
		Name:             exampleText,
		Description:      exampleText,
		ShortDescription: exampleText,
		Requirements:     locale.Text{EN: "Android 8+"},
		Category:         "tools",
		Version:          "1.0.0",
		Icon:             "data:image/png;base64,iVBORw0KGgo=",
		Screenshots:      []string{},
		DownloadURL:      "https://example.com/calc.apk",
		Size:             "12 MB",
		Tags:             []string{"math"},
		Rating:           4.5,
		TotalRatings:     2,
		Downloads:        10,
		Status:           "approved",
		CreatedAt:        exampleTime,
		UpdatedAt:        exampleTime,
		PublishedAt:      &exampleTime,
	}

	exampleChangelog = httptyped.Changelog{
		ID:          412709836219138051,
		AppID:       exampleApp.ID,
		DeveloperID: exampleAccount.ID,
		Version:     "1.0.1",
		Title:       exampleText,
		Content:     exampleText,
		Type:        "patch",
		ReleaseDate: exampleTime,
		CreatedAt:   exampleTime,
		UpdatedAt:   exampleTime,
	}

	exampleRating = httptyped.Rating{
		ID:        412709836219138052,
		AppID:     exampleApp.ID,
		AccountID: exampleAccount.ID,
		Rating:    5,
		Review:    &exampleText,
		CreatedAt: exampleTime,
	}
)

func queryParam(name, typ, desc string, example interface{}) Param {
	return Param{Name: name, In: openapi3.ParameterInQuery, Type: typ, Description: desc, Example: example}
}

func strPtr(s string) *string { return &s }

// Routes lists every route mounted by restapi.Server, except /metrics.
func Routes() []Route {
	return []Route{
		{
			Name: "Health", Method: http.MethodGet, Path: "/health", Tag: tagSystem,
			Summary:  "Health check",
			Status:   http.StatusOK,
			Response: httptyped.HealthResp{Status: "ok"},
		},

		// ** auth
		{
			Name: "AuthRegister", Method: http.MethodPost, Path: "/auth/register", Tag: tagAuth,
			Summary:     "Register new account",
			Description: "Creates the account, sends verification e-mail and sets the auth-token cookie.",
			Request:     handlerauth.RegisterReq{Email: "dev@example.com", Password: "secret123", Name: "Developer", Language: "en"},
			Status:      http.StatusCreated,
			Response:    httptyped.AccountResp{Account: exampleAccount},
			Errors:      []int{http.StatusBadRequest, http.StatusConflict},
		},
		{
			Name: "AuthLogin", Method: http.MethodPost, Path: "/auth/login", Tag: tagAuth,
			Summary:  "Login",
			Request:  handlerauth.LoginReq{Email: "dev@example.com", Password: "secret123"},
			Status:   http.StatusOK,
			Response: httptyped.AccountResp{Account: exampleAccount},
			Errors:   []int{http.StatusBadRequest, http.StatusUnauthorized},
		},
		{
			Name: "AuthVerify", Method: http.MethodGet, Path: "/auth/verify", Tag: tagAuth,
			Summary:  "Verify e-mail address",
			Params:   []Param{queryParam("token", "string", "Verification token from the e-mail link", "eyJhbGciOi...")},
			Status:   http.StatusOK,
			Response: httptyped.AccountResp{Account: exampleAccount},
			Errors:   []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Name: "AuthMe", Method: http.MethodGet, Path: "/auth/me", Tag: tagAuth, Auth: true,
			Summary:  "Current account",
			Status:   http.StatusOK,
			Response: httptyped.AccountResp{Account: exampleAccount},
		},
		{
			Name: "AuthUpdateMe", Method: http.MethodPut, Path: "/auth/me", Tag: tagAuth, Auth: true,
			Summary:  "Update current account",
			Request:  handlerauth.UpdateMeReq{Name: strPtr("New Name"), Language: strPtr("th")},
			Status:   http.StatusOK,
			Response: httptyped.AccountResp{Account: exampleAccount},
			Errors:   []int{http.StatusBadRequest},
		},
		{
			Name: "AuthLogout", Method: http.MethodPost, Path: "/auth/logout", Tag: tagAuth, Auth: true,
			Summary:  "Logout and clear the auth cookie",
			Status:   http.StatusOK,
			Response: httptyped.MessageResp{Message: "logged out successfully"},
		},

		// ** apps
		{
			Name: "AppList", Method: http.MethodGet, Path: "/apps", Tag: tagApp,
			Summary: "List approved apps",
			Params: []Param{
				queryParam("featured", "boolean", "Only featured apps", true),
				queryParam("category", "string", "Exact category", "tools"),
				queryParam("q", "string", "Case-insensitive search on name and description in every language", "calc"),
				queryParam("sort", "string", "recent, popular or rating", "recent"),
				queryParam("limit", "integer", "Page size", 20),
				queryParam("skip", "integer", "Offset", 0),
			},
			Status:   http.StatusOK,
			Response: httptyped.AppsResp{Apps: []httptyped.App{exampleApp}},
			Errors:   []int{http.StatusBadRequest},
		},
		{
			Name: "AppGet", Method: http.MethodGet, Path: "/apps/{id}", Tag: tagApp,
			Summary:  "Get one app",
			Params:   []Param{pathParamID("App ID")},
			Status:   http.StatusOK,
			Response: httptyped.AppResp{App: exampleApp},
			Errors:   []int{http.StatusNotFound},
		},
		{
			Name: "AppDownload", Method: http.MethodPost, Path: "/apps/{id}/download", Tag: tagApp,
			Summary:  "Count one download",
			Params:   []Param{pathParamID("App ID")},
			Status:   http.StatusOK,
			Response: httptyped.DownloadResp{Message: "download count incremented", Downloads: 11},
			Errors:   []int{http.StatusNotFound, http.StatusTooManyRequests},
		},
		{
			Name: "AppListMine", Method: http.MethodGet, Path: "/apps/developer", Tag: tagApp, Auth: true,
			Summary:  "List apps of current developer",
			Status:   http.StatusOK,
			Response: httptyped.AppsResp{Apps: []httptyped.App{exampleApp}},
		},
		{
			Name: "AppCreate", Method: http.MethodPost, Path: "/apps/developer", Tag: tagApp, Auth: true,
			Summary:     "Submit new app",
			Description: "New app always starts as pending until an admin approves it.",
			Request: handlerapp.AppReq{
				Name:        exampleText,
				Description: exampleText,
				Category:    "tools",
				Version:     "1.0.0",
				Screenshots: []string{},
				DownloadURL: "https://example.com/calc.apk",
				Tags:        []string{"math"},
			},
			Status:   http.StatusCreated,
			Response: httptyped.AppResp{App: exampleApp},
			Errors:   []int{http.StatusBadRequest},
		},
		{
			Name: "AppUpdate", Method: http.MethodPut, Path: "/apps/{id}", Tag: tagApp, Auth: true,
			Summary:     "Update app",
			Description: "Only fields present in the body change. Status and featured are only honored for admin.",
			Params:      []Param{pathParamID("App ID")},
			Request:     handlerapp.PatchAppReq{Version: strPtr("1.0.1")},
			Status:      http.StatusOK,
			Response:    httptyped.AppResp{App: exampleApp},
			Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
		},
		{
			Name: "AppDelete", Method: http.MethodDelete, Path: "/apps/{id}", Tag: tagApp, Auth: true,
			Summary:  "Delete app with its changelogs and ratings",
			Params:   []Param{pathParamID("App ID")},
			Status:   http.StatusOK,
			Response: httptyped.MessageResp{Message: "app deleted successfully"},
			Errors:   []int{http.StatusForbidden, http.StatusNotFound},
		},
		{
			Name: "AppChangelogs", Method: http.MethodGet, Path: "/apps/{id}/changelogs", Tag: tagChangelog,
			Summary:  "Changelogs of an app, newest release first",
			Params:   []Param{pathParamID("App ID")},
			Status:   http.StatusOK,
			Response: httptyped.ChangelogsResp{Changelogs: []httptyped.Changelog{exampleChangelog}},
		},
		{
			Name: "RatingList", Method: http.MethodGet, Path: "/apps/{id}/ratings", Tag: tagApp,
			Summary: "Ratings of an app, newest first",
			Params: []Param{
				pathParamID("App ID"),
				queryParam("limit", "integer", "Page size", 20),
				queryParam("skip", "integer", "Offset", 0),
			},
			Status:   http.StatusOK,
			Response: httptyped.RatingsResp{Ratings: []httptyped.Rating{exampleRating}},
			Errors:   []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Name: "RatingAdd", Method: http.MethodPost, Path: "/apps/{id}/ratings", Tag: tagApp, Auth: true,
			Summary:  "Rate an app",
			Params:   []Param{pathParamID("App ID")},
			Request:  handlerrating.AddReq{Rating: 5, Review: &exampleText},
			Status:   http.StatusCreated,
			Response: httptyped.RatingResp{Rating: exampleRating, App: exampleApp},
			Errors:   []int{http.StatusBadRequest, http.StatusNotFound},
		},

		// ** changelogs
		{
			Name: "ChangelogList", Method: http.MethodGet, Path: "/changelogs", Tag: tagChangelog, Auth: true,
			Summary:  "Changelogs of one app, or every changelog of current developer",
			Params:   []Param{queryParam("appId", "string", "App ID", "412709836219138050")},
			Status:   http.StatusOK,
			Response: httptyped.ChangelogsResp{Changelogs: []httptyped.Changelog{exampleChangelog}},
		},
		{
			Name: "ChangelogCreate", Method: http.MethodPost, Path: "/changelogs", Tag: tagChangelog, Auth: true,
			Summary: "Add changelog",
			Request: handlerchangelog.CreateReq{
				AppID:       "412709836219138050",
				Version:     "1.0.1",
				Title:       exampleText,
				Content:     exampleText,
				Type:        "patch",
				ReleaseDate: exampleTime.Format(time.RFC3339),
			},
			Status:   http.StatusCreated,
			Response: httptyped.ChangelogResp{Changelog: exampleChangelog},
			Errors:   []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
		},
		{
			Name: "ChangelogUpdate", Method: http.MethodPut, Path: "/changelogs/{id}", Tag: tagChangelog, Auth: true,
			Summary:  "Update changelog",
			Params:   []Param{pathParamID("Changelog ID")},
			Request:  handlerchangelog.PatchReq{Type: strPtr("hotfix")},
			Status:   http.StatusOK,
			Response: httptyped.ChangelogResp{Changelog: exampleChangelog},
			Errors:   []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
		},
		{
			Name: "ChangelogDelete", Method: http.MethodDelete, Path: "/changelogs/{id}", Tag: tagChangelog, Auth: true,
			Summary:  "Delete changelog",
			Params:   []Param{pathParamID("Changelog ID")},
			Status:   http.StatusOK,
			Response: httptyped.MessageResp{Message: "changelog deleted successfully"},
			Errors:   []int{http.StatusForbidden, http.StatusNotFound},
		},

		// ** admin
		{
			Name: "AdminAppList", Method: http.MethodGet, Path: "/admin/apps", Tag: tagAdmin, Auth: true,
			Summary: "Moderation queue",
			Params: []Param{
				queryParam("status", "string", "pending (default), approved, rejected or suspended", "pending"),
				queryParam("limit", "integer", "Page size", 20),
				queryParam("skip", "integer", "Offset", 0),
			},
			Status:   http.StatusOK,
			Response: httptyped.AppsResp{Apps: []httptyped.App{exampleApp}},
			Errors:   []int{http.StatusBadRequest, http.StatusForbidden},
		},
	}
}
