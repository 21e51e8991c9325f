// Package report aggregates assignment results into per-student summaries
// and a teacher-facing overview, with a printable PDF report card.
package report

import (
	"errors"
	"sort"

	"englab/internal/model"
	"englab/internal/store"
)

var ErrStudentNotFound = errors.New("student not found")

type Service struct {
	students    *store.Collection[model.Student]
	problems    *store.Collection[model.Problem]
	assignments *store.Collection[model.Assignment]
}

func NewService(
	students *store.Collection[model.Student],
	problems *store.Collection[model.Problem],
	assignments *store.Collection[model.Assignment],
) *Service {
	return &Service{students: students, problems: problems, assignments: assignments}
}

// TypeScore is the average graded score for one problem type.
type TypeScore struct {
	Type         string  `json:"type"`
	Assigned     int     `json:"assigned"`
	Graded       int     `json:"graded"`
	AverageScore float64 `json:"average_score"`
}

// StudentSummary is one student's results card.
type StudentSummary struct {
	Student      model.Student `json:"student"`
	Assigned     int           `json:"assigned"`
	Submitted    int           `json:"submitted"`
	Graded       int           `json:"graded"`
	AverageScore float64       `json:"average_score"`
	ByType       []TypeScore   `json:"by_type"`
}

// StudentSummary aggregates every assignment for the student. Assignments
// pointing at deleted problems count toward totals but not type breakdowns.
func (s *Service) StudentSummary(studentID int64) (StudentSummary, error) {
	st, ok := s.students.Find(func(x model.Student) bool { return x.ID == studentID })
	if !ok {
		return StudentSummary{}, ErrStudentNotFound
	}

	summary := StudentSummary{Student: st, ByType: []TypeScore{}}
	byType := map[string]*TypeScore{}
	var scoreSum, scoreN float64

	for _, a := range s.assignments.Filter(func(a model.Assignment) bool { return a.StudentID == studentID }) {
		summary.Assigned++
		if a.Completed {
			summary.Submitted++
		}

		p, ok := s.problems.Find(func(p model.Problem) bool { return p.ID == a.ProblemID })
		var ts *TypeScore
		if ok {
			ts = byType[p.Type]
			if ts == nil {
				ts = &TypeScore{Type: p.Type}
				byType[p.Type] = ts
			}
			ts.Assigned++
		}

		if a.Score != nil {
			summary.Graded++
			scoreSum += float64(*a.Score)
			scoreN++
			if ts != nil {
				ts.AverageScore = (ts.AverageScore*float64(ts.Graded) + float64(*a.Score)) / float64(ts.Graded+1)
				ts.Graded++
			}
		}
	}
	if scoreN > 0 {
		summary.AverageScore = scoreSum / scoreN
	}

	for _, ts := range byType {
		summary.ByType = append(summary.ByType, *ts)
	}
	sort.Slice(summary.ByType, func(i, j int) bool { return summary.ByType[i].Type < summary.ByType[j].Type })
	return summary, nil
}

// GradeStats is the overview bucket for one school grade.
type GradeStats struct {
	Grade        string  `json:"grade"`
	Students     int     `json:"students"`
	Assigned     int     `json:"assigned"`
	Submitted    int     `json:"submitted"`
	AverageScore float64 `json:"average_score"`
}

// Overview is the teacher dashboard aggregate.
type Overview struct {
	Students   int          `json:"students"`
	Problems   int          `json:"problems"`
	Assigned   int          `json:"assigned"`
	Submitted  int          `json:"submitted"`
	ByGrade    []GradeStats `json:"by_grade"`
	ByType     []TypeScore  `json:"by_type"`
}

func (s *Service) Overview() Overview {
	students := s.students.All()
	assignments := s.assignments.All()

	out := Overview{
		Students: len(students),
		Problems: s.problems.Len(),
		Assigned: len(assignments),
		ByGrade:  []GradeStats{},
		ByType:   []TypeScore{},
	}

	studentGrade := make(map[int64]string, len(students))
	byGrade := map[string]*GradeStats{}
	for _, st := range students {
		studentGrade[st.ID] = st.Grade
		gs := byGrade[st.Grade]
		if gs == nil {
			gs = &GradeStats{Grade: st.Grade}
			byGrade[st.Grade] = gs
		}
		gs.Students++
	}

	byType := map[string]*TypeScore{}
	gradeScoreSum := map[string]float64{}
	gradeScoreN := map[string]float64{}

	for _, a := range assignments {
		if a.Completed {
			out.Submitted++
		}

		if grade, ok := studentGrade[a.StudentID]; ok {
			gs := byGrade[grade]
			gs.Assigned++
			if a.Completed {
				gs.Submitted++
			}
			if a.Score != nil {
				gradeScoreSum[grade] += float64(*a.Score)
				gradeScoreN[grade]++
			}
		}

		if p, ok := s.problems.Find(func(p model.Problem) bool { return p.ID == a.ProblemID }); ok {
			ts := byType[p.Type]
			if ts == nil {
				ts = &TypeScore{Type: p.Type}
				byType[p.Type] = ts
			}
			ts.Assigned++
			if a.Score != nil {
				ts.AverageScore = (ts.AverageScore*float64(ts.Graded) + float64(*a.Score)) / float64(ts.Graded+1)
				ts.Graded++
			}
		}
	}

	for grade, gs := range byGrade {
		if n := gradeScoreN[grade]; n > 0 {
			gs.AverageScore = gradeScoreSum[grade] / n
		}
		out.ByGrade = append(out.ByGrade, *gs)
	}
	sort.Slice(out.ByGrade, func(i, j int) bool { return out.ByGrade[i].Grade < out.ByGrade[j].Grade })

	for _, ts := range byType {
		out.ByType = append(out.ByType, *ts)
	}
	sort.Slice(out.ByType, func(i, j int) bool { return out.ByType[i].Type < out.ByType[j].Type })
	return out
}
