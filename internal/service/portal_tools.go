package service

import (
	"context"
	"errors"
	"time"

	"school-assistant-be/pkg/agent"
	"school-assistant-be/pkg/portal"
	"school-assistant-be/pkg/store"
	"school-assistant-be/pkg/vectorstore"
)

// BuildToolRegistry assembles the fixed operation catalog the model may call.
// Handlers convert portal outcomes into results; they never panic and never
// return Go errors upward.
func BuildToolRegistry(client *portal.Client, documents IDocumentService, searchTopK int) *agent.Registry {
	registry := agent.NewRegistry()

	registry.Register(agent.Tool{
		Name:        "student_login",
		Description: "Authenticate a student against the school portal.",
		Kind:        agent.KindLoginSuccess,
		Parameters: []agent.ParamSpec{
			{Name: "student_id", Type: "string", Description: "The student id", Required: true},
			{Name: "password", Type: "string", Description: "The portal password", Required: true},
		},
		Handler: func(ctx context.Context, _ *store.Session, args map[string]string) *agent.Result {
			student, err := client.Login(ctx, args["student_id"], args["password"])
			if err != nil {
				if errors.Is(err, portal.ErrInvalidCredentials) {
					return agent.ErrorResult("student_login", agent.KindLoginFailure,
						agent.CodeInvalidCredentials, "invalid student id or password")
				}
				return remoteFailure("student_login", agent.KindLoginFailure, err)
			}
			return agent.SuccessResult("student_login", agent.KindLoginSuccess, map[string]interface{}{
				"sid":  student.Sid,
				"name": student.Name,
				"temp": student.Temp,
			})
		},
	})

	registry.Register(agent.Tool{
		Name:        "get_term_result",
		Description: "Fetch term exam results for the logged in student.",
		Kind:        agent.KindTermResults,
		Parameters: []agent.ParamSpec{
			{Name: "term", Type: "string", Description: "Term number, e.g. 1 or 2", Required: true},
		},
		RequiresAuth: true,
		Handler: func(ctx context.Context, sess *store.Session, args map[string]string) *agent.Result {
			data, err := client.TermResult(ctx, sess.Student.Sid, sess.Student.Temp, args["term"])
			if err != nil {
				return portalError("get_term_result", agent.KindTermResults, err)
			}
			return agent.SuccessResult("get_term_result", agent.KindTermResults, data)
		},
	})

	registry.Register(agent.Tool{
		Name:        "get_unit_test_result",
		Description: "Fetch class test results for the logged in student.",
		Kind:        agent.KindUnitTestResults,
		Parameters: []agent.ParamSpec{
			{Name: "term", Type: "string", Description: "Term number, e.g. 1 or 2", Required: true},
		},
		RequiresAuth: true,
		Handler: func(ctx context.Context, sess *store.Session, args map[string]string) *agent.Result {
			data, err := client.UnitTestResult(ctx, sess.Student.Sid, sess.Student.Temp, args["term"])
			if err != nil {
				return portalError("get_unit_test_result", agent.KindUnitTestResults, err)
			}
			return agent.SuccessResult("get_unit_test_result", agent.KindUnitTestResults, data)
		},
	})

	registry.Register(agent.Tool{
		Name:        "get_homework",
		Description: "Fetch the homework diary for one date.",
		Kind:        agent.KindHomework,
		Parameters: []agent.ParamSpec{
			{Name: "entry_date", Type: "string", Description: "YYYY-MM-DD, or today/tomorrow/yesterday", Required: true},
		},
		RequiresAuth: true,
		Handler: func(ctx context.Context, sess *store.Session, args map[string]string) *agent.Result {
			entryDate := portal.ResolveEntryDate(args["entry_date"], time.Now())
			data, err := client.Diary(ctx, sess.Student.Temp, entryDate)
			if err != nil {
				return portalError("get_homework", agent.KindHomework, err)
			}
			return agent.SuccessResult("get_homework", agent.KindHomework, map[string]interface{}{
				"entry_date": entryDate,
				"entries":    data,
			})
		},
	})

	registry.Register(agent.Tool{
		Name:         "get_syllabus",
		Description:  "Fetch the syllabus document list for the student's class.",
		Kind:         agent.KindSyllabus,
		RequiresAuth: true,
		Handler: func(ctx context.Context, sess *store.Session, _ map[string]string) *agent.Result {
			items, err := client.Syllabus(ctx, sess.Student.Temp)
			if err != nil {
				return portalError("get_syllabus", agent.KindSyllabus, err)
			}
			return agent.SuccessResult("get_syllabus", agent.KindSyllabus, map[string]interface{}{
				"items": items,
			})
		},
	})

	registry.Register(agent.Tool{
		Name:        "get_worksheet",
		Description: "Fetch worksheets published for one date.",
		Kind:        agent.KindWorksheet,
		Parameters: []agent.ParamSpec{
			{Name: "entry_date", Type: "string", Description: "YYYY-MM-DD, or today/tomorrow/yesterday", Required: true},
		},
		RequiresAuth: true,
		Handler: func(ctx context.Context, sess *store.Session, args map[string]string) *agent.Result {
			entryDate := portal.ResolveEntryDate(args["entry_date"], time.Now())
			items, err := client.Worksheets(ctx, sess.Student.Temp, entryDate)
			if err != nil {
				return portalError("get_worksheet", agent.KindWorksheet, err)
			}
			return agent.SuccessResult("get_worksheet", agent.KindWorksheet, map[string]interface{}{
				"entry_date": entryDate,
				"items":      items,
			})
		},
	})

	registry.Register(agent.Tool{
		Name:        "get_calendar",
		Description: "Fetch the academic calendar. Works without login.",
		Kind:        agent.KindCalendar,
		Handler: func(ctx context.Context, _ *store.Session, _ map[string]string) *agent.Result {
			items, err := client.Calendar(ctx)
			if err != nil {
				return portalError("get_calendar", agent.KindCalendar, err)
			}
			return agent.SuccessResult("get_calendar", agent.KindCalendar, map[string]interface{}{
				"items": items,
			})
		},
	})

	registry.Register(agent.Tool{
		Name:        "ask_document",
		Description: "Search the uploaded school documents for passages matching a question.",
		Kind:        agent.KindDocumentSearch,
		Parameters: []agent.ParamSpec{
			{Name: "query", Type: "string", Description: "The question or phrase to look up", Required: true},
		},
		Handler: func(ctx context.Context, _ *store.Session, args map[string]string) *agent.Result {
			res, err := documents.Search(ctx, args["query"], searchTopK)
			if err != nil {
				if errors.Is(err, vectorstore.ErrStoreEmpty) {
					return agent.ErrorResult("ask_document", agent.KindDocumentSearch,
						agent.CodeStoreEmpty, "no documents have been uploaded yet")
				}
				return remoteFailure("ask_document", agent.KindDocumentSearch, err)
			}
			passages := make([]interface{}, 0, len(res.Results))
			for _, item := range res.Results {
				passages = append(passages, map[string]interface{}{
					"source_id": item.SourceID,
					"text":      item.Text,
					"score":     item.Score,
				})
			}
			return agent.SuccessResult("ask_document", agent.KindDocumentSearch, map[string]interface{}{
				"passages": passages,
			})
		},
	})

	return registry
}

// portalError distinguishes "the portal answered with nothing" from a
// transport or status failure.
func portalError(tool, kind string, err error) *agent.Result {
	if errors.Is(err, portal.ErrNoData) {
		return agent.ErrorResult(tool, kind, agent.CodeRemoteDataEmpty,
			"the portal has no matching data for this request")
	}
	return remoteFailure(tool, kind, err)
}

func remoteFailure(tool, kind string, err error) *agent.Result {
	return agent.ErrorResult(tool, kind, agent.CodeRemoteCallFailed, err.Error())
}
