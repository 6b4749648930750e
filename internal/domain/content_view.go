package domain

import "time"

// LibraryEnvironment — имя базового окружения Katello.
// В Library попадает каждая опубликованная версия, продвигать в него нельзя.
const LibraryEnvironment = "Library"

// Environment — lifecycle environment на сервере.
type Environment struct {
	// ID — идентификатор окружения на сервере.
	ID int `json:"id"`

	// Name — человекочитаемое имя (dev, stage, prod).
	Name string `json:"name"`

	// Library — флаг базового окружения, если сервер его сообщает.
	Library bool `json:"library,omitempty"`
}

// IsLibrary возвращает true для базового окружения.
func (e Environment) IsLibrary() bool {
	return e.Library || e.Name == LibraryEnvironment
}

// ContentView — content view, найденный по имени.
//
// После резолва не изменяется до конца run.
type ContentView struct {
	// ID — идентификатор, назначенный сервером.
	ID int `json:"id"`

	// Name — имя, по которому искали.
	Name string `json:"name"`

	// OrganizationID — организация, в которой живёт content view.
	// Нужна для поиска окружений по имени.
	OrganizationID int `json:"organization_id"`

	// Environments — окружения, связанные с content view, в порядке сервера.
	Environments []Environment `json:"environments"`
}

// ViewPlan — план работы по одному content view.
//
// Проходит через все стадии целиком: резолв заполняет View и Targets,
// публикация — VersionID.
type ViewPlan struct {
	View ContentView `json:"content_view"`

	// Targets — окружения для продвижения в порядке приоритета.
	// Либо View.Environments, либо общий явный список.
	Targets []Environment `json:"targets"`

	// VersionID — версия, созданная публикацией. 0 до публикации.
	VersionID int `json:"version_id,omitempty"`
}

// TargetNames возвращает имена целевых окружений.
func (p *ViewPlan) TargetNames() []string {
	names := make([]string, len(p.Targets))
	for i, env := range p.Targets {
		names[i] = env.Name
	}
	return names
}

// ViewResult — итог обработки одного content view.
type ViewResult struct {
	Name          string        `json:"name"`
	ContentViewID int           `json:"content_view_id"`
	VersionID     int           `json:"version_id"`
	Promoted      []string      `json:"promoted"`
	Skipped       []string      `json:"skipped,omitempty"`
	PollQueries   int           `json:"poll_queries"`
	PublishWait   time.Duration `json:"publish_wait"`
}

// Promotion — одно продвижение версии в окружение.
type Promotion struct {
	Environment Environment `json:"environment"`
	VersionID   int         `json:"version_id"`
	Description string      `json:"description"`
	Timestamp   time.Time   `json:"timestamp"`
}
