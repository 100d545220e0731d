package usecase

import (
	"testing"

	"github.com/ambiclean/apenso/internal/core/domain"
)

func techItem(location string) domain.TechnicalItem {
	return domain.TechnicalItem{
		AssetTag:    domain.Known("1"),
		Brand:       domain.BrandElgin,
		CapacityBTU: domain.Known("9000"),
		Location:    domain.FieldOf(location),
	}
}

func costFor(description, amount, section string) domain.CostItem {
	return domain.CostItem{
		Description: domain.FieldOf(description),
		Amount:      domain.FieldOf(amount),
		Section:     section,
	}
}

func TestReconcileMatchesSectionCaseInsensitive(t *testing.T) {
	entries := Reconcile(
		[]domain.TechnicalItem{techItem("AUDITORIO SALA DE REUNIÃO")},
		[]domain.CostItem{
			costFor("Limpeza - Copa", "R$ 100,00", "Copa"),
			costFor("Instalação de suporte - Sala de Reunião", "R$ 450,00", " Sala de Reunião "),
		},
	)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if !e.Matched || e.Description.Display() != "Instalação de suporte - Sala de Reunião" || e.Amount.Display() != "R$ 450,00" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Seq != 1 {
		t.Fatalf("expected seq 1, got %d", e.Seq)
	}
}

func TestReconcileNoMatchKeepsMissingFields(t *testing.T) {
	entries := Reconcile(
		[]domain.TechnicalItem{techItem("ALMOXARIFADO")},
		[]domain.CostItem{costFor("Limpeza - Copa", "R$ 100,00", "Copa")},
	)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Matched {
		t.Fatalf("expected no match")
	}
	if entries[0].Description.Display() != domain.NotDetermined || entries[0].Amount.Display() != domain.NotDetermined {
		t.Fatalf("expected N/D fields, got %+v", entries[0])
	}
}

func TestReconcileFirstMatchWinsAndReusesCosts(t *testing.T) {
	costs := []domain.CostItem{
		costFor("Manutenção - Copa", "R$ 100,00", "Copa"),
		costFor("Troca de filtro - Copa", "R$ 80,00", "Copa"),
	}
	items := []domain.TechnicalItem{techItem("COPA TERREO"), techItem("COPA 1 ANDAR"), techItem("RECEPCAO")}

	entries := Reconcile(items, costs)
	if len(entries) != len(items) {
		t.Fatalf("expected %d entries, got %d", len(items), len(entries))
	}
	for i := 0; i < 2; i++ {
		if entries[i].Amount.Display() != "R$ 100,00" {
			t.Fatalf("entry %d: expected first cost, got %q", i, entries[i].Amount.Display())
		}
	}
	if entries[2].Matched {
		t.Fatalf("expected third entry unmatched")
	}
	for i, e := range entries {
		if e.Seq != i+1 {
			t.Fatalf("entry %d has seq %d", i, e.Seq)
		}
	}
}

func TestReconcileEmptyInputs(t *testing.T) {
	if got := Reconcile(nil, []domain.CostItem{costFor("x", "R$ 1,00", "x")}); len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
	entries := Reconcile([]domain.TechnicalItem{techItem("SALA")}, nil)
	if len(entries) != 1 || entries[0].Matched {
		t.Fatalf("expected one unmatched entry, got %+v", entries)
	}
}

func TestReconcileEmptySectionMatchesAnyLocation(t *testing.T) {
	entries := Reconcile(
		[]domain.TechnicalItem{techItem("SALA 3")},
		[]domain.CostItem{costFor("Taxa de visita -", "R$ 50,00", "")},
	)
	if !entries[0].Matched {
		t.Fatalf("expected empty section to be contained in every location")
	}
}
