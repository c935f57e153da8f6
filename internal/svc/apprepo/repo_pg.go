package apprepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/yusufsyaifudin/appstore/pkg/pgutil"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	appColumns = `id, developer_id, name, description, short_description, requirements, category, version, icon, ` +
		`screenshots, download_url, website_url, support_url, size, tags, rating, total_ratings, downloads, status, ` +
		`featured, created_at, updated_at, published_at`

	sqlCreateApp = `INSERT INTO apps (` + appColumns + `) VALUES ` +
		`($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23) ` +
		`RETURNING ` + appColumns + `;`

	sqlGetAppByID = `SELECT ` + appColumns + ` FROM apps WHERE id = $1 LIMIT 1;`

	sqlListAppsByDeveloper = `SELECT ` + appColumns + ` FROM apps WHERE developer_id = $1 ORDER BY created_at DESC, id DESC;`

	sqlUpdateApp = `UPDATE apps SET name = $2, description = $3, short_description = $4, requirements = $5, ` +
		`category = $6, version = $7, icon = $8, screenshots = $9, download_url = $10, website_url = $11, ` +
		`support_url = $12, size = $13, tags = $14, status = $15, featured = $16, updated_at = $17, published_at = $18 ` +
		`WHERE id = $1 RETURNING ` + appColumns + `;`

	// changelogs and app_ratings rows are removed by ON DELETE CASCADE
	sqlDelAppByID = `DELETE FROM apps WHERE id = $1 RETURNING id;`

	sqlIncrementDownloads = `UPDATE apps SET downloads = downloads + 1, updated_at = $2 WHERE id = $1 RETURNING downloads;`

	sqlSetRating = `UPDATE apps SET rating = $2, total_ratings = $3, updated_at = $4 WHERE id = $1 RETURNING ` + appColumns + `;`
)

// searchColumns is every localized column matched by InputList.Query.
var searchColumns = []string{
	"name->>'en'", "name->>'th'", "name->>'zh'",
	"description->>'en'", "description->>'th'", "description->>'zh'",
}

var sortClauses = map[string]string{
	SortRecent:  "created_at DESC, id DESC",
	SortPopular: "downloads DESC, id DESC",
	SortRating:  "rating DESC, id DESC",
}

type RepoPostgresConfig struct {
	Connection sqlx.QueryerContext `validate:"required"`
}

type RepoPostgres struct {
	Config RepoPostgresConfig
}

var _ Repo = (*RepoPostgres)(nil)

// Postgres return repo interface which implements using PgSQL
func Postgres(conf RepoPostgresConfig) (service *RepoPostgres, err error) {
	err = validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	service = &RepoPostgres{
		Config: conf,
	}
	return
}

func (p *RepoPostgres) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "apprepo.Create")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	a := in.App
	inserted := App{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &inserted, sqlCreateApp,
		a.ID, a.DeveloperID, a.Name, a.Description, a.ShortDescription, a.Requirements, a.Category, a.Version,
		a.Icon, nonNil(a.Screenshots), a.DownloadURL, a.WebsiteURL, a.SupportURL, a.Size, nonNil(a.Tags),
		a.Rating, a.TotalRatings, a.Downloads, a.Status, a.Featured, a.CreatedAt, a.UpdatedAt, a.PublishedAt,
	)
	if err != nil {
		err = fmt.Errorf("insert app error: %w", err)
		return
	}

	out = OutCreate{
		App: inserted,
	}
	return
}

func (p *RepoPostgres) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "apprepo.GetByID")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	appData, err := p.getOne(ctx, sqlGetAppByID, in.ID)
	if err != nil {
		return
	}

	out = OutGetByID{
		App: appData,
	}
	return
}

// List apps sorted and paginated by the database.
func (p *RepoPostgres) List(ctx context.Context, in InputList) (out OutList, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "apprepo.List")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	query, args := buildListQuery(in)

	apps := make([]App, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &apps, query, args...)
	if err != nil {
		err = fmt.Errorf("cannot get list of apps: %w", err)
		return
	}

	out = OutList{
		Apps: apps,
	}
	return
}

func (p *RepoPostgres) ListByDeveloper(ctx context.Context, in InputListByDeveloper) (out OutListByDeveloper, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	apps := make([]App, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &apps, sqlListAppsByDeveloper, in.DeveloperID)
	if err != nil {
		err = fmt.Errorf("cannot get list of developer apps: %w", err)
		return
	}

	out = OutListByDeveloper{
		Apps: apps,
	}
	return
}

func (p *RepoPostgres) Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "apprepo.Update")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	a := in.App
	appData, err := p.getOne(ctx, sqlUpdateApp,
		a.ID, a.Name, a.Description, a.ShortDescription, a.Requirements, a.Category, a.Version, a.Icon,
		nonNil(a.Screenshots), a.DownloadURL, a.WebsiteURL, a.SupportURL, a.Size, nonNil(a.Tags), a.Status,
		a.Featured, a.UpdatedAt, a.PublishedAt,
	)
	if err != nil {
		return
	}

	out = OutUpdate{
		App: appData,
	}
	return
}

func (p *RepoPostgres) DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	var id int64
	err = sqlx.GetContext(ctx, p.Config.Connection, &id, sqlDelAppByID, in.ID)
	if errors.Is(err, sql.ErrNoRows) {
		out = OutDelByID{
			Success: false,
		}

		err = nil // discard error
		return
	}

	if err != nil {
		err = fmt.Errorf("delete app error: %w", err)
		return
	}

	out = OutDelByID{
		Success: id == in.ID,
	}
	return
}

// IncrementDownloads adds exactly one in a single statement, so concurrent calls never lose an increment.
func (p *RepoPostgres) IncrementDownloads(ctx context.Context, in InputIncrementDownloads) (out OutIncrementDownloads, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "apprepo.IncrementDownloads")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	var downloads int64
	err = sqlx.GetContext(ctx, p.Config.Connection, &downloads, sqlIncrementDownloads, in.ID, in.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return
	}

	if err != nil {
		err = fmt.Errorf("increment downloads error: %w", err)
		return
	}

	out = OutIncrementDownloads{
		Downloads: downloads,
	}
	return
}

func (p *RepoPostgres) SetRating(ctx context.Context, in InputSetRating) (out OutSetRating, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	appData, err := p.getOne(ctx, sqlSetRating, in.ID, in.Rating, in.TotalRatings, in.UpdatedAt)
	if err != nil {
		return
	}

	out = OutSetRating{
		App: appData,
	}
	return
}

func (p *RepoPostgres) getOne(ctx context.Context, query string, args ...interface{}) (appData App, err error) {
	err = sqlx.GetContext(ctx, p.Config.Connection, &appData, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return
	}

	if err != nil {
		err = fmt.Errorf("query app error: %w", err)
		return
	}

	return
}

// buildListQuery always filter by status first, so public listing can never leak unapproved apps.
func buildListQuery(in InputList) (query string, args []interface{}) {
	args = make([]interface{}, 0, 5)
	bind := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where := []string{"status = " + bind(in.Status)}

	if in.Featured {
		where = append(where, "featured = TRUE")
	}

	if category := strings.TrimSpace(in.Category); category != "" {
		where = append(where, "category = "+bind(category))
	}

	if q := strings.TrimSpace(in.Query); q != "" {
		placeholder := bind(pgutil.ContainsPattern(q))
		matches := make([]string, 0, len(searchColumns))
		for _, col := range searchColumns {
			matches = append(matches, fmt.Sprintf("%s ILIKE %s", col, placeholder))
		}

		where = append(where, "("+strings.Join(matches, " OR ")+")")
	}

	orderBy, ok := sortClauses[in.Sort]
	if !ok {
		orderBy = sortClauses[SortRecent]
	}

	query = fmt.Sprintf("SELECT %s FROM apps WHERE %s ORDER BY %s LIMIT %s OFFSET %s;",
		appColumns, strings.Join(where, " AND "), orderBy, bind(in.Limit), bind(in.Skip),
	)
	return
}

// nonNil makes sure NOT NULL array column receives '{}' instead of NULL.
func nonNil(arr pq.StringArray) pq.StringArray {
	if arr == nil {
		return pq.StringArray{}
	}

	return arr
}
