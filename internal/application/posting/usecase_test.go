package posting_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Documentos-api/internal/application/dto"
	appposting "github.com/jhoicas/Documentos-api/internal/application/posting"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/posting"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con semántica transaccional (snapshot + restore en error)
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	docs     map[string]*entity.Document
	lines    map[string]*entity.DocumentLine
	ledger   map[string]map[int]*entity.LedgerEntry
	batches  map[string]*entity.ItemBatch
	counters map[string]int
	items    map[string]*entity.Item
}

func newMemStore() *memStore {
	return &memStore{
		docs:     map[string]*entity.Document{},
		lines:    map[string]*entity.DocumentLine{},
		ledger:   map[string]map[int]*entity.LedgerEntry{},
		batches:  map[string]*entity.ItemBatch{},
		counters: map[string]int{},
		items:    map[string]*entity.Item{},
	}
}

func batchKey(itemID, batchNo string, expiry *time.Time) string {
	return itemID + "|" + batchNo + "|" + entity.NormalizeExpiry(expiry).Format("2006-01-02")
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range s.docs {
		d := *v
		c.docs[k] = &d
	}
	for k, v := range s.lines {
		l := *v
		c.lines[k] = &l
	}
	for k, m := range s.ledger {
		c.ledger[k] = map[int]*entity.LedgerEntry{}
		for n, e := range m {
			ec := *e
			c.ledger[k][n] = &ec
		}
	}
	for k, v := range s.batches {
		b := *v
		c.batches[k] = &b
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	c.items = s.items // el maestro de artículos es de solo lectura en los tests
	return c
}

func (s *memStore) restore(c *memStore) {
	s.docs, s.lines, s.ledger, s.batches, s.counters = c.docs, c.lines, c.ledger, c.batches, c.counters
}

// memTxRunner serializa las transacciones y revierte el almacén completo
// cuando fn retorna error, igual que Rollback en la implementación real.
type memTxRunner struct{ s *memStore }

func (r *memTxRunner) Run(_ context.Context, fn func(
	repository.DocumentRepository,
	repository.LineRepository,
	repository.LedgerRepository,
	repository.BatchRepository,
	repository.SequenceRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	r.s.mu.Lock()
	snap := r.s.snapshot()
	r.s.mu.Unlock()
	err := fn(&fakeDocRepo{r.s}, &fakeLineRepo{r.s}, &fakeLedgerRepo{r.s}, &fakeBatchRepo{r.s}, &fakeSeqRepo{r.s})
	if err != nil {
		r.s.mu.Lock()
		r.s.restore(snap)
		r.s.mu.Unlock()
	}
	return err
}

// ── Repositorios falsos ───────────────────────────────────────────────────────

type fakeDocRepo struct{ s *memStore }

func (r *fakeDocRepo) Insert(_ context.Context, doc *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.docs {
		if d.CompanyID == doc.CompanyID && d.Type == doc.Type && d.Number == doc.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *doc
	r.s.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocRepo) UpdateHeader(_ context.Context, doc *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.docs[doc.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *doc
	r.s.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocRepo) MarkInactive(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = entity.DocStatusInactive
	d.IsActive = false
	return nil
}

func (r *fakeDocRepo) GetByNumber(_ context.Context, companyID, docType string, number int) (*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.docs {
		if d.CompanyID == companyID && d.Type == docType && d.Number == number {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDocRepo) GetByNumberForUpdate(ctx context.Context, companyID, docType string, number int) (*entity.Document, error) {
	return r.GetByNumber(ctx, companyID, docType, number)
}

type fakeLineRepo struct{ s *memStore }

func (r *fakeLineRepo) Insert(_ context.Context, line *entity.DocumentLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *line
	r.s.lines[line.ID] = &cp
	return nil
}

func (r *fakeLineRepo) Update(_ context.Context, line *entity.DocumentLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lines[line.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *line
	r.s.lines[line.ID] = &cp
	return nil
}

func (r *fakeLineRepo) Delete(_ context.Context, lineID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.lines, lineID)
	return nil
}

func (r *fakeLineRepo) DeleteByDocument(_ context.Context, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, l := range r.s.lines {
		if l.DocumentID == documentID {
			delete(r.s.lines, id)
		}
	}
	return nil
}

func (r *fakeLineRepo) ListByDocument(_ context.Context, documentID string) ([]*entity.DocumentLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DocumentLine
	for _, l := range r.s.lines {
		if l.DocumentID == documentID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}

type fakeLedgerRepo struct{ s *memStore }

func (r *fakeLedgerRepo) Upsert(_ context.Context, e *entity.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ledger[e.DocumentID] == nil {
		r.s.ledger[e.DocumentID] = map[int]*entity.LedgerEntry{}
	}
	cp := *e
	r.s.ledger[e.DocumentID][e.LineNo] = &cp
	return nil
}

func (r *fakeLedgerRepo) DeleteAbove(_ context.Context, documentID string, maxLineNo int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for n := range r.s.ledger[documentID] {
		if n > maxLineNo {
			delete(r.s.ledger[documentID], n)
		}
	}
	return nil
}

func (r *fakeLedgerRepo) DeleteByDocument(_ context.Context, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.ledger, documentID)
	return nil
}

func (r *fakeLedgerRepo) ListByDocument(_ context.Context, documentID string) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.LedgerEntry
	for _, e := range r.s.ledger[documentID] {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}

type fakeBatchRepo struct{ s *memStore }

func (r *fakeBatchRepo) Upsert(_ context.Context, itemID, batchNo string, expiry *time.Time, qtyDelta, costPrice, salePrice decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !salePrice.IsPositive() {
		salePrice = costPrice
	}
	key := batchKey(itemID, batchNo, expiry)
	if b, ok := r.s.batches[key]; ok {
		b.Quantity = b.Quantity.Add(qtyDelta)
		b.CostPrice = costPrice
		b.SalePrice = salePrice
		return nil
	}
	if !qtyDelta.IsPositive() {
		return domain.ErrBatchNotFound
	}
	r.s.batches[key] = &entity.ItemBatch{
		ID:         key,
		ItemID:     itemID,
		BatchNo:    batchNo,
		ExpiryDate: entity.NormalizeExpiry(expiry),
		Quantity:   qtyDelta,
		CostPrice:  costPrice,
		SalePrice:  salePrice,
	}
	return nil
}

func (r *fakeBatchRepo) Reverse(_ context.Context, itemID, batchNo string, expiry *time.Time, qty decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[batchKey(itemID, batchNo, expiry)]
	if !ok {
		return domain.ErrBatchNotFound
	}
	b.Quantity = b.Quantity.Sub(qty)
	return nil
}

func (r *fakeBatchRepo) Get(_ context.Context, itemID, batchNo string, expiry *time.Time) (*entity.ItemBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[batchKey(itemID, batchNo, expiry)]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

type fakeSeqRepo struct{ s *memStore }

func (r *fakeSeqRepo) NextNumber(_ context.Context, companyID, docType string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := companyID + "|" + docType
	r.s.counters[key]++
	return r.s.counters[key], nil
}

type fakeItemRepo struct{ s *memStore }

func (r *fakeItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompany = "emp-1"
	testUser    = "usr-1"
	testItem    = "itm-1"
	testParty   = "prov-1"
	testAccount = "acct-proveedor"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func today() string { return time.Now().UTC().Format("2006-01-02") }

func newTestEngine(t *testing.T) (*appposting.DocumentUseCase, *memStore) {
	t.Helper()
	s := newMemStore()
	s.items[testItem] = &entity.Item{ID: testItem, CompanyID: testCompany, Code: "A-01", CostPrice: dec(7), SalePrice: dec(9)}
	accounts := map[string]posting.Accounts{
		entity.DocTypeGRN:            {Contra: "acct-compras"},
		entity.DocTypeSupplierReturn: {Contra: "acct-dev-compras", Tax: "acct-gst"},
		entity.DocTypeSalesReturn:    {Contra: "acct-dev-ventas", Tax: "acct-gst"},
	}
	uc := appposting.NewDocumentUseCase(&memTxRunner{s}, &fakeDocRepo{s}, &fakeLineRepo{s}, &fakeItemRepo{s}, accounts)
	return uc, s
}

func grnRequest(lines ...dto.DocumentLineRequest) dto.CreateDocumentRequest {
	return dto.CreateDocumentRequest{
		Date:      today(),
		PartyID:   testParty,
		AccountID: testAccount,
		Lines:     lines,
	}
}

func grnLine(qty, cost float64, batch string) dto.DocumentLineRequest {
	return dto.DocumentLineRequest{
		ItemID:    testItem,
		Quantity:  dec(qty),
		CostPrice: dec(cost),
		SalePrice: dec(cost + 1),
		UnitPrice: dec(cost),
		BatchNo:   batch,
	}
}

func ledgerOf(t *testing.T, s *memStore, docID string) []*entity.LedgerEntry {
	t.Helper()
	entries, err := (&fakeLedgerRepo{s}).ListByDocument(context.Background(), docID)
	require.NoError(t, err)
	return entries
}

func docByNumber(t *testing.T, s *memStore, docType string, number int) *entity.Document {
	t.Helper()
	d, err := (&fakeDocRepo{s}).GetByNumber(context.Background(), testCompany, docType, number)
	require.NoError(t, err)
	require.NotNil(t, d)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

// TestCreate_RecepcionEscenarioReferencia escenario de referencia: recepción
// con dos líneas (10 @ 5 y 5 @ 8) sobre un lote nuevo. Se espera lote con
// cantidad 15 y asiento línea 1 = −90 contra el proveedor, línea 2 = +90.
func TestCreate_RecepcionEscenarioReferencia(t *testing.T) {
	uc, s := newTestEngine(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN,
		grnRequest(grnLine(10, 5, "L-001"), grnLine(5, 8, "L-001")))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Number)
	assert.Equal(t, entity.DocStatusActive, out.Status)

	batch, err := (&fakeBatchRepo{s}).Get(ctx, testItem, "L-001", nil)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.True(t, batch.Quantity.Equal(dec(15)), "el lote acumula 10 + 5")

	doc := docByNumber(t, s, entity.DocTypeGRN, 1)
	entries := ledgerOf(t, s, doc.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, testAccount, entries[0].AccountID)
	assert.True(t, entries[0].Amount.Equal(dec(-90)))
	assert.Equal(t, "acct-compras", entries[1].AccountID)
	assert.True(t, entries[1].Amount.Equal(dec(90)))
}

// TestCreate_GetRoundTrip crea y lee: la cabecera y las líneas leídas
// equivalen a lo enviado, con números de línea asignados 1..n.
func TestCreate_GetRoundTrip(t *testing.T) {
	uc, _ := newTestEngine(t)
	ctx := context.Background()

	in := grnRequest(grnLine(10, 5, "L-001"), grnLine(5, 8, "L-002"))
	in.DocNo = "FAC-779"
	in.Reference = "OC-123"
	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN, in)
	require.NoError(t, err)

	got, err := uc.Get(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.NoError(t, err)
	assert.Equal(t, entity.DocTypeGRN, got.Type)
	assert.Equal(t, today(), got.Date)
	assert.Equal(t, testParty, got.PartyID)
	assert.Equal(t, "FAC-779", got.DocNo)
	assert.Equal(t, "OC-123", got.Reference)
	assert.True(t, got.GrossTotal.Equal(dec(90)))

	require.Len(t, got.Lines, 2)
	assert.Equal(t, 1, got.Lines[0].LineNo)
	assert.Equal(t, 2, got.Lines[1].LineNo)
	assert.True(t, got.Lines[0].Quantity.Equal(dec(10)))
	assert.Equal(t, "L-002", got.Lines[1].BatchNo)
}

// TestCreate_DevolucionProveedorAsientoTresLineas PURRTN con impuesto: tres
// líneas de asiento que suman cero, con totales negativos por el signo del tipo.
func TestCreate_DevolucionProveedorAsientoTresLineas(t *testing.T) {
	uc, s := newTestEngine(t)
	ctx := context.Background()

	in := dto.CreateDocumentRequest{
		Date:      today(),
		PartyID:   testParty,
		AccountID: testAccount,
		Lines: []dto.DocumentLineRequest{
			{ItemID: testItem, Quantity: dec(4), UnitPrice: dec(10), TaxAmount: dec(2)},
		},
	}
	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeSupplierReturn, in)
	require.NoError(t, err)

	doc := docByNumber(t, s, entity.DocTypeSupplierReturn, out.Number)
	entries := ledgerOf(t, s, doc.ID)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Amount.Equal(dec(42)), "línea 1 = −bruto = −(−42)")
	assert.True(t, entries[1].Amount.Equal(dec(-40)))
	assert.True(t, entries[2].Amount.Equal(dec(-2)))

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	assert.True(t, sum.IsZero(), "el asiento debe sumar cero")
}

// TestCreate_NumerosUnicosConcurrentes propiedad: N creaciones concurrentes
// para la misma (empresa, tipo) reciben números únicos y contiguos.
func TestCreate_NumerosUnicosConcurrentes(t *testing.T) {
	uc, _ := newTestEngine(t)
	ctx := context.Background()
	const n = 20

	numbers := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN,
				grnRequest(grnLine(1, 5, "L-001")))
			if assert.NoError(t, err) {
				numbers <- out.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[int]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "número %d repetido", num)
		seen[num] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "falta el número %d", i)
	}
}

// TestCreate_ReintentaTrasColision si el número asignado ya existe (carrera
// perdida contra otra instancia), la creación completa se reintenta y gana
// el siguiente número.
func TestCreate_ReintentaTrasColision(t *testing.T) {
	uc, s := newTestEngine(t)
	ctx := context.Background()

	// Documento preexistente con el número 1 sin pasar por el contador,
	// como lo dejaría otra instancia del servicio.
	require.NoError(t, (&fakeDocRepo{s}).Insert(ctx, &entity.Document{
		ID: "ajeno", CompanyID: testCompany, Type: entity.DocTypeGRN, Number: 1, IsActive: true,
	}))

	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN,
		grnRequest(grnLine(3, 5, "L-001")))
	require.NoError(t, err, "la colisión debe reintentarse, no fallar")
	assert.Equal(t, 2, out.Number)
}

func TestCreate_FechaFueraDeVentana(t *testing.T) {
	uc, _ := newTestEngine(t)
	in := grnRequest(grnLine(1, 5, "L-001"))
	in.Date = time.Now().UTC().AddDate(0, 0, -90).Format("2006-01-02")
	_, err := uc.Create(context.Background(), testCompany, testUser, entity.DocTypeGRN, in)
	assert.ErrorIs(t, err, domain.ErrDateOutOfRange)
}

func TestCreate_ValidacionesBasicas(t *testing.T) {
	uc, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, testCompany, testUser, "XXX", grnRequest(grnLine(1, 5, "")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo desconocido")

	in := grnRequest()
	_, err = uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	in = grnRequest(grnLine(1, 5, ""))
	in.PartyID = ""
	_, err = uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin contraparte")
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

// TestUpdate_BorraLineaYAgregaNueva escenario de referencia: el documento tiene
// una línea, la edición la borra y agrega otra. Queda exactamente una línea
// numerada 1, el lote refleja −vieja +nueva y el asiento se recalcula.
func TestUpdate_BorraLineaYAgregaNueva(t *testing.T) {
	uc, s := newTestEngine(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN,
		grnRequest(grnLine(10, 5, "L-001")))
	require.NoError(t, err)

	before, err := uc.Get(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.NoError(t, err)
	oldLineID := before.Lines[0].LineID

	upd := dto.UpdateDocumentRequest{
		Date:      today(),
		PartyID:   testParty,
		AccountID: testAccount,
		Lines: []dto.DocumentLineRequest{
			{LineID: oldLineID, IsDeleted: true},
			grnLine(3, 6, "L-002"),
		},
	}
	st, err := uc.Update(ctx, testCompany, entity.DocTypeGRN, out.Number, upd)
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusUpdated, st.Status)

	after, err := uc.Get(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.NoError(t, err)
	require.Len(t, after.Lines, 1)
	assert.Equal(t, 1, after.Lines[0].LineNo)
	assert.Equal(t, "L-002", after.Lines[0].BatchNo)
	assert.Equal(t, entity.DocStatusUpdated, after.Status)
	assert.True(t, after.GrossTotal.Equal(dec(18)), "3 × 6 de la línea sobreviviente")

	oldBatch, err := (&fakeBatchRepo{s}).Get(ctx, testItem, "L-001", nil)
	require.NoError(t, err)
	assert.True(t, oldBatch.Quantity.IsZero(), "el lote viejo pierde las 10 unidades")
	newBatch, err := (&fakeBatchRepo{s}).Get(ctx, testItem, "L-002", nil)
	require.NoError(t, err)
	assert.True(t, newBatch.Quantity.Equal(dec(3)))

	doc := docByNumber(t, s, entity.DocTypeGRN, out.Number)
	entries := ledgerOf(t, s, doc.ID)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Amount.Equal(dec(-18)))
	assert.True(t, entries[1].Amount.Equal(dec(18)))
}

// TestUpdate_NumeracionContiguaTrasBorrado propiedad: tras cualquier edición
// los números de línea quedan exactamente {1..k}.
func TestUpdate_NumeracionContiguaTrasBorrado(t *testing.T) {
	uc, _ := newTestEngine(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN,
		grnRequest(grnLine(1, 5, "L-001"), grnLine(2, 5, "L-001"), grnLine(3, 5, "L-001")))
	require.NoError(t, err)

	before, err := uc.Get(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.NoError(t, err)
	middle := before.Lines[1].LineID

	_, err = uc.Update(ctx, testCompany, entity.DocTypeGRN, out.Number, dto.UpdateDocumentRequest{
		Date:      today(),
		PartyID:   testParty,
		AccountID: testAccount,
		Lines:     []dto.DocumentLineRequest{{LineID: middle, IsDeleted: true}},
	})
	require.NoError(t, err)

	after, err := uc.Get(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.NoError(t, err)
	require.Len(t, after.Lines, 2)
	assert.Equal(t, 1, after.Lines[0].LineNo)
	assert.Equal(t, 2, after.Lines[1].LineNo)
}

func TestUpdate_NoExisteRetornaNotFound(t *testing.T) {
	uc, _ := newTestEngine(t)
	_, err := uc.Update(context.Background(), testCompany, entity.DocTypeGRN, 99, dto.UpdateDocumentRequest{
		Date:      today(),
		PartyID:   testParty,
		AccountID: testAccount,
		Lines:     []dto.DocumentLineRequest{grnLine(1, 5, "")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

// TestDelete_RestauraLotes crear e inmediatamente anular deja cada lote tocado
// con su cantidad previa, y el documento deja de resolverse por Get.
func TestDelete_RestauraLotes(t *testing.T) {
	uc, s := newTestEngine(t)
	ctx := context.Background()

	// Existencia previa de 100 unidades en el lote.
	require.NoError(t, (&fakeBatchRepo{s}).Upsert(ctx, testItem, "L-001", nil, dec(100), dec(5), dec(8)))

	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN,
		grnRequest(grnLine(10, 5, "L-001"), grnLine(5, 8, "L-001")))
	require.NoError(t, err)

	batch, _ := (&fakeBatchRepo{s}).Get(ctx, testItem, "L-001", nil)
	require.True(t, batch.Quantity.Equal(dec(115)))

	st, err := uc.Delete(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusInactive, st.Status)

	batch, _ = (&fakeBatchRepo{s}).Get(ctx, testItem, "L-001", nil)
	assert.True(t, batch.Quantity.Equal(dec(100)), "la anulación restaura la cantidad previa")

	_, err = uc.Get(ctx, testCompany, entity.DocTypeGRN, out.Number)
	assert.ErrorIs(t, err, domain.ErrNotFound, "un documento anulado no se resuelve")

	doc := docByNumber(t, s, entity.DocTypeGRN, out.Number)
	assert.Equal(t, entity.DocStatusInactive, doc.Status)
	assert.Empty(t, ledgerOf(t, s, doc.ID), "el asiento se borra físicamente")
	lines, _ := (&fakeLineRepo{s}).ListByDocument(ctx, doc.ID)
	assert.Empty(t, lines, "las líneas se borran físicamente")
}

// TestDelete_IdempotenteSobreAnulado repetir la anulación es un no-op exitoso.
func TestDelete_IdempotenteSobreAnulado(t *testing.T) {
	uc, _ := newTestEngine(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN,
		grnRequest(grnLine(1, 5, "L-001")))
	require.NoError(t, err)

	_, err = uc.Delete(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.NoError(t, err)

	st, err := uc.Delete(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.NoError(t, err, "anular dos veces no es error")
	assert.Equal(t, entity.DocStatusInactive, st.Status)
}

func TestDelete_NoExisteRetornaNotFound(t *testing.T) {
	uc, _ := newTestEngine(t)
	_, err := uc.Delete(context.Background(), testCompany, entity.DocTypeGRN, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestDelete_LoteFaltanteRevierteTodo si el lote de una línea ya no existe, la
// reversa falla y la transacción completa se revierte: el documento sigue
// activo con sus líneas y su asiento.
func TestDelete_LoteFaltanteRevierteTodo(t *testing.T) {
	uc, s := newTestEngine(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN,
		grnRequest(grnLine(10, 5, "L-001")))
	require.NoError(t, err)

	// Alguien eliminó la fila del lote por fuera del motor.
	s.mu.Lock()
	delete(s.batches, batchKey(testItem, "L-001", nil))
	s.mu.Unlock()

	_, err = uc.Delete(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.ErrorIs(t, err, domain.ErrBatchNotFound)

	got, err := uc.Get(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.NoError(t, err, "el documento sigue activo tras el rollback")
	assert.Len(t, got.Lines, 1)
	doc := docByNumber(t, s, entity.DocTypeGRN, out.Number)
	assert.Len(t, ledgerOf(t, s, doc.ID), 2)
}

// Verifica que el error de la transacción llega al llamador con su causa.
func TestDelete_ErrorEnvueltoConservaCausa(t *testing.T) {
	uc, s := newTestEngine(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, testCompany, testUser, entity.DocTypeGRN,
		grnRequest(grnLine(2, 5, "L-009")))
	require.NoError(t, err)

	s.mu.Lock()
	delete(s.batches, batchKey(testItem, "L-009", nil))
	s.mu.Unlock()

	_, err = uc.Delete(ctx, testCompany, entity.DocTypeGRN, out.Number)
	require.Error(t, err)
	assert.Contains(t, fmt.Sprintf("%v", err), "línea 1")
}
