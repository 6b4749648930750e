package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/shaiso/cvpromote/internal/domain"
)

// Resolver находит content views и окружения по именам.
//
// Требует ровно одно совпадение по точному имени: ноль — ErrXNotFound,
// больше одного — ErrXAmbiguous. Первый попавшийся результат не берётся.
type Resolver struct {
	api    API
	logger *slog.Logger

	// envs — кэш окружений на один run: organizationID → name → Environment.
	envs map[int]map[string]domain.Environment
}

// NewResolver создаёт новый Resolver.
func NewResolver(api API, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		api:    api,
		logger: logger,
		envs:   make(map[int]map[string]domain.Environment),
	}
}

// Reset очищает кэш окружений. Вызывается в начале каждого run:
// в режиме schedule окружения могли измениться между run.
func (r *Resolver) Reset() {
	r.envs = make(map[int]map[string]domain.Environment)
}

// Resolve возвращает content view с его окружениями.
func (r *Resolver) Resolve(ctx context.Context, name string) (domain.ContentView, error) {
	query := url.Values{}
	query.Set("search", fmt.Sprintf("name=%q", name))

	res, err := r.api.Get(ctx, "content_views", query)
	if err != nil {
		return domain.ContentView{}, fmt.Errorf("resolve content view %q: %w", name, err)
	}

	matches := exactMatches(res, name)
	switch len(matches) {
	case 0:
		return domain.ContentView{}, fmt.Errorf("%w: %q", ErrContentViewNotFound, name)
	case 1:
	default:
		return domain.ContentView{}, fmt.Errorf("%w: %q matches %d content views", ErrContentViewAmbiguous, name, len(matches))
	}

	view := parseContentView(matches[0])
	view.Name = name

	r.logger.Info("resolved content view",
		"content_view", name,
		"content_view_id", view.ID,
		"environments", len(view.Environments),
	)

	return view, nil
}

// ResolveEnvironments возвращает окружения организации по именам
// в том же порядке.
//
// Library не ищется на сервере: он остаётся в списке как есть
// и пропускается Promoter'ом.
func (r *Resolver) ResolveEnvironments(ctx context.Context, organizationID int, names []string) ([]domain.Environment, error) {
	envs := make([]domain.Environment, 0, len(names))

	for _, name := range names {
		if name == domain.LibraryEnvironment {
			envs = append(envs, domain.Environment{Name: name, Library: true})
			continue
		}

		env, err := r.resolveEnvironment(ctx, organizationID, name)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}

	return envs, nil
}

func (r *Resolver) resolveEnvironment(ctx context.Context, organizationID int, name string) (domain.Environment, error) {
	if cached, ok := r.envs[organizationID][name]; ok {
		return cached, nil
	}

	query := url.Values{}
	query.Set("organization_id", strconv.Itoa(organizationID))
	query.Set("name", name)

	res, err := r.api.Get(ctx, "environments", query)
	if err != nil {
		return domain.Environment{}, fmt.Errorf("resolve environment %q: %w", name, err)
	}

	matches := exactMatches(res, name)
	switch len(matches) {
	case 0:
		return domain.Environment{}, fmt.Errorf("%w: %q in organization %d", ErrEnvironmentNotFound, name, organizationID)
	case 1:
	default:
		return domain.Environment{}, fmt.Errorf("%w: %q matches %d environments", ErrEnvironmentAmbiguous, name, len(matches))
	}

	env := parseEnvironment(matches[0])

	if r.envs[organizationID] == nil {
		r.envs[organizationID] = make(map[string]domain.Environment)
	}
	r.envs[organizationID][name] = env

	r.logger.Debug("resolved environment",
		"environment", name,
		"environment_id", env.ID,
		"organization_id", organizationID,
	)

	return env, nil
}

// exactMatches оставляет из results записи с точным совпадением имени.
func exactMatches(res gjson.Result, name string) []gjson.Result {
	var matches []gjson.Result
	res.Get("results").ForEach(func(_, item gjson.Result) bool {
		if item.Get("name").String() == name {
			matches = append(matches, item)
		}
		return true
	})
	return matches
}

// parseContentView разбирает запись content view.
func parseContentView(item gjson.Result) domain.ContentView {
	view := domain.ContentView{
		ID:             int(item.Get("id").Int()),
		Name:           item.Get("name").String(),
		OrganizationID: int(item.Get("organization_id").Int()),
	}
	if view.OrganizationID == 0 {
		view.OrganizationID = int(item.Get("organization.id").Int())
	}

	item.Get("environments").ForEach(func(_, env gjson.Result) bool {
		view.Environments = append(view.Environments, parseEnvironment(env))
		return true
	})

	return view
}

func parseEnvironment(item gjson.Result) domain.Environment {
	return domain.Environment{
		ID:      int(item.Get("id").Int()),
		Name:    item.Get("name").String(),
		Library: item.Get("library").Bool(),
	}
}
