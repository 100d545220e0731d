package main

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LOG_LEVEL", "POSTGRES_DSN", "NATS_URL", "SUMMARY_XLSX_PATH", "METRICS_TEXTFILE_PATH", "BRAND_VOCABULARY_PATH", "REPORT_TITLE", "STORAGE_PATH"} {
		t.Setenv(key, "")
	}
}

func writeTemplate(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:sectPr/></w:body></w:document>`
	if _, err := io.WriteString(w, body); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func TestGenerateWithExplicitPaths(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	template := filepath.Join(dir, "modelo.docx")
	visit := filepath.Join(dir, "visita.txt")
	costs := filepath.Join(dir, "custos.txt")
	output := filepath.Join(dir, "saida.docx")
	summary := filepath.Join(dir, "resumo.xlsx")
	writeTemplate(t, template)
	if err := os.WriteFile(visit, []byte("777 ELGIN 9000 BTUS MARCA ALMOXARIFADO CENTRAL\n"), 0o644); err != nil {
		t.Fatalf("write visit: %v", err)
	}
	if err := os.WriteFile(costs, []byte("Limpeza - Copa R$ 120,00\n"), 0o644); err != nil {
		t.Fatalf("write costs: %v", err)
	}

	var stdout, stderr bytes.Buffer
	args := []string{"apenso", "--summary", summary, template, visit, costs, output}
	if err := newApp(&stdout, &stderr).RunContext(context.Background(), args); err != nil {
		t.Fatalf("Run() error = %v, stderr = %s", err, stderr.String())
	}

	if stderr.Len() != 0 {
		t.Fatalf("expected a quiet stderr on success, got %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "Arquivo gerado com sucesso: "+output) {
		t.Fatalf("unexpected stdout: %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), summary) {
		t.Fatalf("expected summary path on stdout: %q", stdout.String())
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output document: %v", err)
	}
}

func TestGenerateFailsOnMissingInput(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	template := filepath.Join(dir, "modelo.docx")
	writeTemplate(t, template)

	var stdout, stderr bytes.Buffer
	args := []string{"apenso", "--log-level", "error", template, filepath.Join(dir, "nao-existe.txt"), filepath.Join(dir, "custos.txt"), filepath.Join(dir, "saida.docx")}
	if err := newApp(&stdout, &stderr).RunContext(context.Background(), args); err == nil {
		t.Fatalf("expected error for missing visit document")
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no confirmation, got %q", stdout.String())
	}
}

func TestGenerateRejectsPartialArgumentsWithExitCodeOne(t *testing.T) {
	isolateEnv(t)
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).RunContext(context.Background(), []string{"apenso", "a.docx", "b.pdf"})
	exitErr, ok := err.(cli.ExitCoder)
	if !ok || exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
}

func TestRequestFromArgsDefaults(t *testing.T) {
	req, err := requestFromArgs(nil)
	if err != nil {
		t.Fatalf("requestFromArgs() error = %v", err)
	}
	if req.TemplatePath != defaultTemplate || req.VisitPath != defaultVisit || req.WorksheetPath != defaultWorksheet || req.OutputPath != defaultOutput {
		t.Fatalf("unexpected defaults: %+v", req)
	}
}

func TestHistoryRequiresDatabase(t *testing.T) {
	isolateEnv(t)
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).RunContext(context.Background(), []string{"apenso", "history"})
	if err == nil || !strings.Contains(err.Error(), "POSTGRES_DSN") {
		t.Fatalf("expected POSTGRES_DSN error, got %v", err)
	}
}
