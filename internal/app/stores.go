package app

import (
	"path/filepath"

	"englab/internal/model"
	"englab/internal/store"
)

// Stores bundles every JSON-backed collection under one data directory.
type Stores struct {
	Problems    *store.Collection[model.Problem]
	Pending     *store.Collection[model.PendingProblem]
	Students    *store.Collection[model.Student]
	Assignments *store.Collection[model.Assignment]
	Requests    *store.Collection[model.ProblemRequest]
	Settings    *store.Object[model.SettingsFile]
}

// OpenStores loads every collection. A corrupt file fails the whole open;
// starting with silently empty data would look like data loss.
func OpenStores(dataDir string) (*Stores, error) {
	problems, err := store.Open[model.Problem](filepath.Join(dataDir, "problems.json"))
	if err != nil {
		return nil, err
	}
	pending, err := store.Open[model.PendingProblem](filepath.Join(dataDir, "pending_problems.json"))
	if err != nil {
		return nil, err
	}
	students, err := store.Open[model.Student](filepath.Join(dataDir, "students.json"))
	if err != nil {
		return nil, err
	}
	assignments, err := store.Open[model.Assignment](filepath.Join(dataDir, "assignments.json"))
	if err != nil {
		return nil, err
	}
	requests, err := store.Open[model.ProblemRequest](filepath.Join(dataDir, "problem_requests.json"))
	if err != nil {
		return nil, err
	}
	settings, err := store.OpenObject(filepath.Join(dataDir, "settings.json"),
		model.SettingsFile{AutoAssign: model.DefaultAutoAssignSettings()})
	if err != nil {
		return nil, err
	}
	return &Stores{
		Problems:    problems,
		Pending:     pending,
		Students:    students,
		Assignments: assignments,
		Requests:    requests,
		Settings:    settings,
	}, nil
}
