package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"shoreline_portal_backend/internal/prospects/domain"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/platform/apperr"
	"shoreline_portal_backend/platform/logger"
	"shoreline_portal_backend/platform/validator"
)

type fakeImportRepo struct {
	repository.ProspectsRepository

	byIdentity map[string]struct{}
	byEmail    map[string]struct{}
	created    []repository.CreateProspectParams
}

func newFakeImportRepo() *fakeImportRepo {
	return &fakeImportRepo{
		byIdentity: map[string]struct{}{},
		byEmail:    map[string]struct{}{},
	}
}

func (f *fakeImportRepo) FindByIdentity(_ context.Context, name, city string) (repository.Prospect, error) {
	if _, ok := f.byIdentity[name+"|"+city]; ok {
		return repository.Prospect{ID: uuid.New()}, nil
	}
	return repository.Prospect{}, apperr.NotFound("prospect not found")
}

func (f *fakeImportRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeImportRepo) Create(_ context.Context, params repository.CreateProspectParams) (repository.Prospect, error) {
	f.created = append(f.created, params)
	f.byIdentity[domain.NormalizeIdentity(params.Name)+"|"+domain.NormalizeIdentity(params.City)] = struct{}{}
	f.byEmail[params.Email] = struct{}{}
	return repository.Prospect{ID: uuid.New()}, nil
}

const header = "name,email,phone,city,region,country,latitude,longitude,population,notes\n"

func newImporter(repo *fakeImportRepo) *Importer {
	return New(repo, validator.New(), logger.New("test"))
}

func TestImportMixedRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(header)
	// Ten valid rows.
	rows := []string{
		"Duinwacht,info@duinwacht.nl,,Den Haag,Zuid-Holland,NL,52.08,4.27,550000,",
		"Strandvrienden,hi@strandvrienden.nl,,Den Haag,,NL,52.06,4.22,,",
		"Kustkracht,mail@kustkracht.nl,,Katwijk,,NL,52.20,4.39,65000,beach group",
		"Zeehelden,post@zeehelden.nl,,Scheveningen,,NL,,,,",
		"NoordzeeNet,info@noordzeenet.nl,,IJmuiden,,NL,52.46,4.61,31000,",
		"Waddenwacht,hallo@waddenwacht.nl,,Harlingen,,NL,53.17,5.42,15000,",
		"Deltawerkers,team@deltawerkers.nl,,Vlissingen,,NL,51.44,3.57,44000,",
		"Rivierenridders,info@rivierenridders.nl,,Rotterdam,,NL,51.92,4.48,650000,",
		"Groene Golf,contact@groenegolf.nl,,Zandvoort,,NL,52.37,4.53,17000,",
		"Schone Stranden,info@schonestranden.nl,,Texel,,NL,53.05,4.80,13000,",
	}
	// Two malformed rows: a broken email and a lone latitude.
	rows = append(rows,
		"Kapot Org,not-an-email,,Leiden,,NL,,,,",
		"Half Coord,info@halfcoord.nl,,Delft,,NL,52.01,,,",
	)
	sb.WriteString(strings.Join(rows, "\n"))

	repo := newFakeImportRepo()
	report, err := newImporter(repo).Import(context.Background(), strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if report.Processed != 12 {
		t.Fatalf("processed = %d, want 12", report.Processed)
	}
	if report.Imported != 10 {
		t.Fatalf("imported = %d, want 10: %+v", report.Imported, report.Errors)
	}
	if len(report.Errors) != 2 {
		t.Fatalf("errors = %d, want 2: %+v", len(report.Errors), report.Errors)
	}
	// Line numbers are 1-based including the header.
	if report.Errors[0].Line != 12 || report.Errors[1].Line != 13 {
		t.Fatalf("unexpected error lines: %+v", report.Errors)
	}
	if len(repo.created) != 10 {
		t.Fatalf("created = %d, want 10", len(repo.created))
	}
	if repo.created[0].Source != sourceImport {
		t.Fatalf("source = %q, want %q", repo.created[0].Source, sourceImport)
	}
}

func TestImportSkipsDuplicates(t *testing.T) {
	repo := newFakeImportRepo()
	repo.byIdentity["duinwacht|den haag"] = struct{}{}
	repo.byEmail["taken@strandvrienden.nl"] = struct{}{}

	input := header +
		"Duinwacht,info@duinwacht.nl,,Den Haag,,NL,,,,\n" +
		"Strandvrienden,taken@strandvrienden.nl,,Leiden,,NL,,,,\n" +
		"Nieuw Clubje,new@clubje.nl,,Gouda,,NL,,,,"

	report, err := newImporter(repo).Import(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Imported != 1 || report.SkippedDuplicates != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestImportRejectsBadHeader(t *testing.T) {
	input := "name,email\nDuinwacht,info@duinwacht.nl"
	_, err := newImporter(newFakeImportRepo()).Import(context.Background(), strings.NewReader(input))
	if err == nil {
		t.Fatal("expected header error")
	}
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("unexpected error kind: %v", err)
	}
}

func TestImportNormalizesPhoneAndEmail(t *testing.T) {
	repo := newFakeImportRepo()
	input := header + "Duinwacht,INFO@Duinwacht.NL,06 12345678,Den Haag,,NL,,,,"

	report, err := newImporter(repo).Import(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("imported = %d, want 1: %+v", report.Imported, report.Errors)
	}
	created := repo.created[0]
	if created.Email != "info@duinwacht.nl" {
		t.Fatalf("email not lowercased: %q", created.Email)
	}
	if created.Phone == nil || *created.Phone != "+31612345678" {
		t.Fatalf("phone not normalized: %v", created.Phone)
	}
}

func TestImportRowsDirect(t *testing.T) {
	repo := newFakeImportRepo()
	repo.byIdentity["duinwacht|den haag"] = struct{}{}

	region := "Zuid-Holland"
	rows := []Row{
		{Name: "Strandvrienden", Email: "hi@strandvrienden.nl", City: "Den Haag", Region: &region, Country: "NL"},
		{Name: "Duinwacht", Email: "info@duinwacht.nl", City: "Den Haag", Country: "NL"},
		{Name: "X", Email: "not-an-email", City: "", Country: ""},
	}

	report, err := newImporter(repo).ImportRows(context.Background(), rows, "discovery")
	if err != nil {
		t.Fatalf("ImportRows: %v", err)
	}
	if report.Processed != 3 || report.Imported != 1 || report.SkippedDuplicates != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Errors) != 1 || report.Errors[0].Line != 3 {
		t.Fatalf("unexpected errors: %+v", report.Errors)
	}
	if len(repo.created) != 1 || repo.created[0].Source != "discovery" {
		t.Fatalf("unexpected created rows: %+v", repo.created)
	}
}
