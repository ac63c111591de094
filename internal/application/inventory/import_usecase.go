package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/ports"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// Área asignada a las ubicaciones creadas automáticamente durante una importación.
const autoLocationArea = "AUTO"

// Tamaño máximo aceptado para un archivo de importación.
const maxImportBytes = 10 << 20

// importColumns alias de cabecera aceptados para cada columna (en minúsculas, sin espacios).
var importColumns = map[string][]string{
	"carrier_name":    {"carrier_name", "carrier", "transportista"},
	"tracking_number": {"tracking_number", "tracking", "guia"},
	"return_number":   {"return_number", "rma", "return"},
	"order_number":    {"order_number", "order", "pedido"},
	"customer_name":   {"customer_name", "customer", "cliente"},
	"expected_carton": {"expected_carton", "expected", "expected_cartons"},
	"actual_carton":   {"actual_carton", "actual", "actual_cartons", "cartons"},
	"weight_kg":       {"weight_kg", "weight", "peso"},
	"stage":           {"stage", "status", "etapa"},
	"remarks":         {"remarks", "notes", "observaciones"},
	"location_code":   {"location_code", "location", "ubicacion"},
}

// ImportEntriesUseCase alta masiva de entradas desde CSV o XLSX. Todas las filas válidas se insertan en una
// sola transacción; las filas inválidas se cuentan y se informan sin abortar el resto.
type ImportEntriesUseCase struct {
	txRunner TxRunner
	cache    ports.CacheInvalidator
	log      zerolog.Logger
	now      func() time.Time
}

// NewImportEntriesUseCase construye el caso de uso.
func NewImportEntriesUseCase(txRunner TxRunner, cache ports.CacheInvalidator, log zerolog.Logger) *ImportEntriesUseCase {
	return &ImportEntriesUseCase{txRunner: txRunner, cache: cache, log: log, now: time.Now}
}

// importRecord fila cruda del archivo con su número de línea (o de fila en la hoja).
type importRecord struct {
	line   int
	fields []string
}

type importRow struct {
	line         int
	req          dto.CreateEntryRequest
	locationCode string
}

// ImportCSV lee el archivo (UTF-8 o Windows-1252, separado por comas o punto y coma) e inserta las filas.
// Una ubicación indicada por código que no existe se crea activa en el área AUTO.
func (uc *ImportEntriesUseCase) ImportCSV(ctx context.Context, actor string, r io.Reader) (*dto.ImportSummaryResponse, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, domain.MissingField("actor")
	}
	records, err := readImportCSV(r)
	if err != nil {
		return nil, err
	}
	rows, err := importRows(records)
	if err != nil {
		return nil, err
	}
	return uc.insertRows(ctx, "csv", actor, rows)
}

// ImportXLSX igual que ImportCSV sobre la hoja activa de un libro Excel. La primera fila es la cabecera.
func (uc *ImportEntriesUseCase) ImportXLSX(ctx context.Context, actor string, r io.Reader) (*dto.ImportSummaryResponse, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, domain.MissingField("actor")
	}
	records, err := readImportXLSX(r)
	if err != nil {
		return nil, err
	}
	rows, err := importRows(records)
	if err != nil {
		return nil, err
	}
	return uc.insertRows(ctx, "xlsx", actor, rows)
}

// insertRows inserta las filas válidas en una sola transacción.
func (uc *ImportEntriesUseCase) insertRows(ctx context.Context, format, actor string, rows []importRow) (*dto.ImportSummaryResponse, error) {
	summary := &dto.ImportSummaryResponse{}
	now := uc.now()

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		locations := make(map[string]*entity.Location)

		for _, row := range rows {
			e, err := newEntryFromRequest(row.req)
			if err != nil {
				summary.Errors++
				summary.RowErrors = append(summary.RowErrors, dto.ImportRowError{Line: row.line, Message: err.Error()})
				continue
			}
			if row.locationCode != "" {
				loc, err := uc.resolveLocation(ctx, repos, locations, row.locationCode, actor, now, summary)
				if err != nil {
					return err
				}
				if loc.IsActive {
					id := loc.ID
					e.LocationID = &id
					e.LocationCode = loc.Code
				} else {
					uc.log.Warn().Int("line", row.line).Str("location_code", loc.Code).
						Msg("ubicación inactiva en la importación; la entrada queda sin ubicar")
				}
			}
			if err := insertEntry(ctx, repos, e, actor, now); err != nil {
				return fmt.Errorf("línea %d: %w", row.line, err)
			}
			summary.Inserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("format", format).
		Int("inserted", summary.Inserted).
		Int("errors", summary.Errors).
		Strs("locations_created", summary.LocationsCreated).
		Str("actor", actor).
		Msg("importación de entradas")
	if summary.Inserted > 0 || len(summary.LocationsCreated) > 0 {
		uc.cache.Invalidate(ports.ScopeEntries, ports.ScopeLocations, ports.ScopeDashboard)
	}
	return summary, nil
}

// resolveLocation busca la ubicación por código exacto y la crea si no existe.
func (uc *ImportEntriesUseCase) resolveLocation(
	ctx context.Context,
	repos TxRepos,
	cache map[string]*entity.Location,
	code, actor string,
	now time.Time,
	summary *dto.ImportSummaryResponse,
) (*entity.Location, error) {
	if loc, ok := cache[code]; ok {
		return loc, nil
	}
	loc, err := repos.Locations.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = &entity.Location{
			Code:      code,
			Area:      autoLocationArea,
			IsActive:  true,
			CreatedAt: now,
			CreatedBy: actor,
			UpdatedAt: now,
		}
		if err := repos.Locations.Create(ctx, loc); err != nil {
			return nil, fmt.Errorf("crear ubicación %q: %w", code, err)
		}
		summary.LocationsCreated = append(summary.LocationsCreated, code)
	}
	cache[code] = loc
	return loc, nil
}

func readAllLimited(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("leer archivo: %w", err)
	}
	if len(raw) > maxImportBytes {
		return nil, fmt.Errorf("archivo mayor a %d bytes: %w", maxImportBytes, domain.ErrInvalidInput)
	}
	return raw, nil
}

// readImportCSV decodifica el archivo y devuelve sus registros, cabecera incluida.
func readImportCSV(r io.Reader) ([]importRecord, error) {
	raw, err := readAllLimited(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		raw, err = charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decodificar Windows-1252: %w", domain.ErrInvalidInput)
		}
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records []importRecord
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if len(records) == 0 {
				return nil, fmt.Errorf("cabecera CSV: %w", domain.ErrInvalidInput)
			}
			return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, importRecord{line: line, fields: rec})
	}
	return records, nil
}

// readImportXLSX lee la hoja activa del libro. excelize devuelve también las filas vacías intermedias,
// así que el registro i corresponde a la fila i+1 de la hoja.
func readImportXLSX(r io.Reader) ([]importRecord, error) {
	raw, err := readAllLimited(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("archivo excel inválido: %v: %w", err, domain.ErrInvalidInput)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("libro sin hojas: %w", domain.ErrInvalidInput)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer la hoja %s: %v: %w", sheet, err, domain.ErrInvalidInput)
	}
	records := make([]importRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, importRecord{line: i + 1, fields: row})
	}
	return records, nil
}

// importRows mapea los registros (cabecera en el primero) a CreateEntryRequest.
func importRows(records []importRecord) ([]importRow, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("archivo vacío: %w", domain.ErrInvalidInput)
	}
	index := mapHeader(records[0].fields)
	if _, ok := index["carrier_name"]; !ok {
		return nil, domain.MissingField("carrier_name")
	}

	var rows []importRow
	for _, r := range records[1:] {
		rec := r.fields
		if isBlank(rec) {
			continue
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		req := dto.CreateEntryRequest{
			CarrierName:    get("carrier_name"),
			TrackingNumber: get("tracking_number"),
			ReturnNumber:   get("return_number"),
			OrderNumber:    get("order_number"),
			CustomerName:   get("customer_name"),
			ExpectedCarton: dto.LenientIntFromString(get("expected_carton")),
			ActualCarton:   dto.LenientIntFromString(get("actual_carton")),
			WeightKg:       dto.LenientDecimalFromString(get("weight_kg")),
			Stage:          get("stage"),
			Remarks:        get("remarks"),
		}
		rows = append(rows, importRow{line: r.line, req: req, locationCode: get("location_code")})
	}
	return rows, nil
}

func mapHeader(header []string) map[string]int {
	aliases := make(map[string]string)
	for col, names := range importColumns {
		for _, n := range names {
			aliases[n] = col
		}
	}
	index := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
		if col, ok := aliases[key]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	return index
}

func detectDelimiter(raw []byte) rune {
	first := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		first = raw[:i]
	}
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
