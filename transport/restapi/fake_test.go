package restapi

import (
	"context"
	"sync"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/appsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/authsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/changelogsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
	"github.com/yusufsyaifudin/appstore/internal/svc/ratingsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
)

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

var (
	developer = authsvc.Account{ID: 10, Email: "dev@example.com", Name: "Dev", Role: policy.RoleDeveloper, Language: locale.EN}
	stranger  = authsvc.Account{ID: 11, Email: "other@example.com", Name: "Other", Role: policy.RoleDeveloper, Language: locale.TH}
	admin     = authsvc.Account{ID: 99, Email: "admin@example.com", Name: "Admin", Role: policy.RoleAdmin, Language: locale.EN}
)

// fakeAuth knows one token per account, the token is also the session token.
type fakeAuth struct {
	mu       sync.Mutex
	tokens   map[string]authsvc.Account
	loggedIn []string
	logout   []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		tokens: map[string]authsvc.Account{
			"dev-token":   developer,
			"other-token": stranger,
			"admin-token": admin,
		},
	}
}

var _ authsvc.Service = (*fakeAuth)(nil)

func (f *fakeAuth) Register(_ context.Context, in authsvc.InputRegister) (out authsvc.OutRegister, err error) {
	if len(in.Password) < 6 {
		err = svcerr.InvalidInput("password must be at least 6 characters long")
		return
	}

	if in.Email == developer.Email {
		err = svcerr.Conflict("user with this email already exists")
		return
	}

	acc := authsvc.Account{ID: 20, Email: in.Email, Name: in.Name, Role: policy.RoleDeveloper, Language: locale.EN, CreatedAt: fixedTime, UpdatedAt: fixedTime}
	f.mu.Lock()
	f.tokens["new-token"] = acc
	f.mu.Unlock()

	out = authsvc.OutRegister{
		Account:    acc,
		Credential: authsvc.Credential{Token: "new-token", ExpiresAt: fixedTime.Add(authsvc.DefaultTokenTTL)},
	}
	return
}

func (f *fakeAuth) Login(_ context.Context, in authsvc.InputLogin) (out authsvc.OutLogin, err error) {
	if in.Email != developer.Email || in.Password != "secret123" {
		err = svcerr.Unauthorized("invalid email or password")
		return
	}

	f.mu.Lock()
	f.loggedIn = append(f.loggedIn, in.Email)
	f.mu.Unlock()

	out = authsvc.OutLogin{
		Account:    developer,
		Credential: authsvc.Credential{Token: "dev-token", ExpiresAt: fixedTime.Add(authsvc.DefaultTokenTTL)},
	}
	return
}

func (f *fakeAuth) Authenticate(_ context.Context, in authsvc.InputAuthenticate) (out authsvc.OutAuthenticate, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, ok := f.tokens[in.Token]
	if !ok {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	out = authsvc.OutAuthenticate{Account: acc, SessionToken: in.Token}
	return
}

func (f *fakeAuth) Logout(_ context.Context, in authsvc.InputLogout) (out authsvc.OutLogout, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, out.Success = f.tokens[in.SessionToken]
	delete(f.tokens, in.SessionToken)
	f.logout = append(f.logout, in.SessionToken)
	return
}

func (f *fakeAuth) Me(_ context.Context, in authsvc.InputMe) (out authsvc.OutMe, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, acc := range f.tokens {
		if acc.ID == in.AccountID {
			acc.Avatar = "data:image/png;base64,AAAA"
			out.Account = acc
			return
		}
	}

	err = svcerr.NotFound("user not found")
	return
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, in authsvc.InputUpdateProfile) (out authsvc.OutUpdateProfile, err error) {
	me, err := f.Me(ctx, authsvc.InputMe{AccountID: in.AccountID})
	if err != nil {
		return
	}

	out.Account = me.Account
	if in.Name != nil {
		out.Account.Name = *in.Name
	}

	if in.Language != nil {
		lang, ok := locale.ParseLang(*in.Language)
		if !ok {
			err = svcerr.InvalidInput("language must be one of en, th or zh")
			return
		}
		out.Account.Language = lang
	}
	return
}

func (f *fakeAuth) VerifyEmail(_ context.Context, in authsvc.InputVerifyEmail) (out authsvc.OutVerifyEmail, err error) {
	if in.Token != "verify-ok" {
		err = svcerr.InvalidInput("invalid or expired verification token")
		return
	}

	out.Account = developer
	out.Account.IsVerified = true
	return
}

// fakeApps keeps apps in memory and applies the ownership rule the same way the real service does.
type fakeApps struct {
	mu        sync.Mutex
	apps      map[int64]appsvc.App
	lastList  appsvc.InputList
	lastAdmin appsvc.InputListByStatus
	writes    int
	failList  error
}

func newFakeApps() *fakeApps {
	return &fakeApps{
		apps: map[int64]appsvc.App{
			1: {ID: 1, DeveloperID: developer.ID, Name: locale.Text{EN: "Foo"}, Status: "approved", CreatedAt: fixedTime, UpdatedAt: fixedTime},
			2: {ID: 2, DeveloperID: developer.ID, Name: locale.Text{EN: "Bar"}, Status: "pending", CreatedAt: fixedTime, UpdatedAt: fixedTime},
		},
	}
}

var _ appsvc.Service = (*fakeApps)(nil)

func (f *fakeApps) List(_ context.Context, in appsvc.InputList) (out appsvc.OutList, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastList = in
	if f.failList != nil {
		err = f.failList
		return
	}

	for _, id := range []int64{1, 2, 3} {
		if app, ok := f.apps[id]; ok && app.Status == "approved" {
			out.Apps = append(out.Apps, app)
		}
	}
	return
}

func (f *fakeApps) ListByStatus(_ context.Context, in appsvc.InputListByStatus) (out appsvc.OutList, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastAdmin = in
	status := in.Status
	if status == "" {
		status = "pending"
	}

	for _, id := range []int64{1, 2, 3} {
		if app, ok := f.apps[id]; ok && app.Status == status {
			out.Apps = append(out.Apps, app)
		}
	}
	return
}

func (f *fakeApps) ListByOwner(_ context.Context, in appsvc.InputListByOwner) (out appsvc.OutList, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range []int64{1, 2, 3} {
		if app, ok := f.apps[id]; ok && app.DeveloperID == in.AccountID {
			out.Apps = append(out.Apps, app)
		}
	}
	return
}

func (f *fakeApps) Get(_ context.Context, in appsvc.InputGet) (out appsvc.OutGet, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	app, ok := f.apps[in.ID]
	if !ok {
		err = svcerr.NotFound("app not found")
		return
	}

	out.App = app
	return
}

func (f *fakeApps) Create(_ context.Context, in appsvc.InputCreate) (out appsvc.OutCreate, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if in.Fields.Name.IsZero() {
		err = svcerr.InvalidInput("name is required")
		return
	}

	app := appsvc.App{
		ID:          3,
		DeveloperID: in.Actor.ID,
		Name:        in.Fields.Name,
		Category:    in.Fields.Category,
		Tags:        in.Fields.Tags,
		Status:      "pending",
		CreatedAt:   fixedTime,
		UpdatedAt:   fixedTime,
	}
	f.apps[app.ID] = app
	f.writes++

	out.App = app
	return
}

func (f *fakeApps) Update(_ context.Context, in appsvc.InputUpdate) (out appsvc.OutUpdate, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	app, ok := f.apps[in.ID]
	if !ok {
		err = svcerr.NotFound("app not found")
		return
	}

	if !policy.CanMutate(app.DeveloperID, in.Actor) {
		err = svcerr.Forbidden("forbidden")
		return
	}

	if in.Patch.Name != nil {
		app.Name = *in.Patch.Name
	}

	if in.Patch.Status != nil && policy.CanChangeStatus(in.Actor) {
		app.Status = *in.Patch.Status
	}

	f.apps[app.ID] = app
	f.writes++

	out.App = app
	return
}

func (f *fakeApps) Delete(_ context.Context, in appsvc.InputDelete) (out appsvc.OutDelete, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	app, ok := f.apps[in.ID]
	if !ok {
		err = svcerr.NotFound("app not found")
		return
	}

	if !policy.CanMutate(app.DeveloperID, in.Actor) {
		err = svcerr.Forbidden("forbidden")
		return
	}

	delete(f.apps, in.ID)
	f.writes++

	out.Success = true
	return
}

func (f *fakeApps) IncrementDownloads(_ context.Context, in appsvc.InputIncrementDownloads) (out appsvc.OutIncrementDownloads, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	app, ok := f.apps[in.ID]
	if !ok {
		err = svcerr.NotFound("app not found")
		return
	}

	app.Downloads++
	f.apps[in.ID] = app

	out.Downloads = app.Downloads
	return
}

type fakeChangelogs struct {
	mu          sync.Mutex
	lastCreate  changelogsvc.InputCreate
	byApp       []int64
	byDeveloper []int64
}

var _ changelogsvc.Service = (*fakeChangelogs)(nil)

func (f *fakeChangelogs) Create(_ context.Context, in changelogsvc.InputCreate) (out changelogsvc.OutCreate, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastCreate = in
	if in.AppID <= 0 {
		err = svcerr.InvalidInput("appId is required")
		return
	}

	out.Changelog = changelogsvc.Changelog{
		ID:          7,
		AppID:       in.AppID,
		DeveloperID: in.Actor.ID,
		Version:     in.Version,
		Title:       in.Title,
		Content:     in.Content,
		Type:        in.Type,
		ReleaseDate: fixedTime,
		CreatedAt:   fixedTime,
		UpdatedAt:   fixedTime,
	}
	return
}

func (f *fakeChangelogs) Update(_ context.Context, in changelogsvc.InputUpdate) (out changelogsvc.OutUpdate, err error) {
	if in.ID != 7 {
		err = svcerr.NotFound("changelog not found")
		return
	}

	out.Changelog = changelogsvc.Changelog{ID: 7, AppID: 1, DeveloperID: developer.ID}
	if in.Patch.Version != nil {
		out.Changelog.Version = *in.Patch.Version
	}
	return
}

func (f *fakeChangelogs) Delete(_ context.Context, in changelogsvc.InputDelete) (out changelogsvc.OutDelete, err error) {
	if in.ID != 7 {
		err = svcerr.NotFound("changelog not found")
		return
	}

	if !policy.CanMutate(developer.ID, in.Actor) {
		err = svcerr.Forbidden("forbidden")
		return
	}

	out.Success = true
	return
}

func (f *fakeChangelogs) ListByApp(_ context.Context, in changelogsvc.InputListByApp) (out changelogsvc.OutList, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.byApp = append(f.byApp, in.AppID)
	if in.AppID == 1 {
		out.Changelogs = []changelogsvc.Changelog{{ID: 7, AppID: 1, DeveloperID: developer.ID, Version: "1.0.0", Type: "major"}}
	}
	return
}

func (f *fakeChangelogs) ListByDeveloper(_ context.Context, in changelogsvc.InputListByDeveloper) (out changelogsvc.OutList, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.byDeveloper = append(f.byDeveloper, in.AccountID)
	return
}

type fakeRatings struct {
	mu     sync.Mutex
	scores []int
}

var _ ratingsvc.Service = (*fakeRatings)(nil)

func (f *fakeRatings) Add(_ context.Context, in ratingsvc.InputAdd) (out ratingsvc.OutAdd, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if in.AppID != 1 {
		err = svcerr.NotFound("app not found")
		return
	}

	f.scores = append(f.scores, in.Score)
	sum := 0
	for _, s := range f.scores {
		sum += s
	}

	out.Rating = ratingsvc.Rating{ID: int64(len(f.scores)), AppID: in.AppID, AccountID: in.AccountID, Score: in.Score, Review: in.Review, CreatedAt: fixedTime}
	out.App = appsvc.App{
		ID:           1,
		DeveloperID:  developer.ID,
		Status:       "approved",
		Rating:       ratingsvc.RoundRating(float64(sum) / float64(len(f.scores))),
		TotalRatings: int64(len(f.scores)),
	}
	return
}

func (f *fakeRatings) ListByApp(_ context.Context, in ratingsvc.InputListByApp) (out ratingsvc.OutListByApp, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, s := range f.scores {
		out.Ratings = append(out.Ratings, ratingsvc.Rating{ID: int64(i + 1), AppID: in.AppID, Score: s, CreatedAt: fixedTime})
	}
	return
}
