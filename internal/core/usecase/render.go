package usecase

import (
	"fmt"
	"strings"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/core/ports"
)

const (
	DefaultReportTitle = "NOVOS SERVIÇOS – PIRACICABA"

	separatorWidth  = 80
	deviceModel     = "SPLIT"
	serviceQuantity = 1
)

func separator() string {
	return strings.Repeat("=", separatorWidth)
}

// RenderReport appends the services section to doc.
func RenderReport(doc ports.ReportDocument, title string, entries []domain.ReconciledEntry) {
	if strings.TrimSpace(title) == "" {
		title = DefaultReportTitle
	}
	doc.AddPageBreak()
	doc.AddParagraph(title)
	doc.AddParagraph(separator())

	for _, entry := range entries {
		for _, paragraph := range entryParagraphs(entry) {
			doc.AddParagraph(paragraph)
		}
		doc.AddParagraph(separator())
	}
}

func entryParagraphs(entry domain.ReconciledEntry) []string {
	amount := entry.Amount.Display()
	return []string{
		fmt.Sprintf("\nSERVIÇO %d", entry.Seq),
		"DADOS DO APARELHO CONDICIONADOR DE AR",
		"MARCA: " + entry.Item.Brand.Display(),
		"MODELO: " + deviceModel,
		"PATRIMÔNIO: " + entry.Item.AssetTag.Display(),
		"BTUs: " + entry.Item.CapacityBTU.Display(),
		"LOCAL ONDE ESTÁ INSTALADO: " + entry.Item.Location.Display(),
		"OFICIAL GESTOR DA ATA DE REGISTRO DE PREÇOS: ",
		"",
		"PLANILHA DE COMPOSIÇÃO DE CUSTOS",
		"Descrição dos serviços a serem realizados",
		entry.Description.Display(),
		fmt.Sprintf("Quantidade: %d", serviceQuantity),
		"Valor Unitário: " + amount,
		"Valor Total: " + amount,
		"VALOR TOTAL DOS SERVIÇOS: " + amount,
	}
}
