package models

import "go.mongodb.org/mongo-driver/bson"

// PlanStage is one node of a winning plan tree. Classic engine plans nest
// through inputStage, slot based engine plans wrap the tree in queryPlan.
type PlanStage struct {
	Stage      string     `bson:"stage,omitempty"`
	IndexName  string     `bson:"indexName,omitempty"`
	InputStage *PlanStage `bson:"inputStage,omitempty"`
	QueryPlan  *PlanStage `bson:"queryPlan,omitempty"`
}

type ExecutionStats struct {
	NReturned           int64 `bson:"nReturned"`
	ExecutionTimeMillis int64 `bson:"executionTimeMillis"`
	TotalKeysExamined   int64 `bson:"totalKeysExamined"`
	TotalDocsExamined   int64 `bson:"totalDocsExamined"`
}

// QueryPlan is the decoded subset of an explain reply. Raw keeps the full
// reply for printing.
type QueryPlan struct {
	Planner struct {
		Namespace   string    `bson:"namespace"`
		WinningPlan PlanStage `bson:"winningPlan"`
	} `bson:"queryPlanner"`
	Stats ExecutionStats `bson:"executionStats"`
	Raw   bson.Raw       `bson:"-"`
}

// Stages lists the winning plan's stage names from the root down.
func (p QueryPlan) Stages() []string {
	var stages []string
	for s := &p.Planner.WinningPlan; s != nil; {
		if s.QueryPlan != nil {
			s = s.QueryPlan
			continue
		}
		if s.Stage != "" {
			stages = append(stages, s.Stage)
		}
		s = s.InputStage
	}
	return stages
}

// IndexName returns the first index named in the winning plan, if any.
func (p QueryPlan) IndexName() string {
	for s := &p.Planner.WinningPlan; s != nil; {
		if s.QueryPlan != nil {
			s = s.QueryPlan
			continue
		}
		if s.IndexName != "" {
			return s.IndexName
		}
		s = s.InputStage
	}
	return ""
}

func (p QueryPlan) UsesIndex() bool {
	for _, stage := range p.Stages() {
		if stage == "IXSCAN" {
			return true
		}
	}
	return false
}
