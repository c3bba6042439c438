package fixtures

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==========================================
// IN-MEMORY STORE
// ==========================================

// Store keeps every table in memory. Its repositories and transactor
// behave like the PostgreSQL ones closely enough for service tests: a
// failed unit of work rolls back all tables.
type Store struct {
	mu sync.Mutex

	employees  map[string]employee.Employee
	shift      *calendar.Shift
	holidays   map[string]calendar.Holiday
	overtime   map[string]overtime.Request
	attendance map[string]attendance.Record
	leaves     map[string]leave.Request
	config     payroll.Configuration
	salaries   map[string]payroll.SalaryRecord
	advances   map[string]payroll.AdvanceRequest

	// AttendanceWriteErr makes attendance writes for an employee fail.
	AttendanceWriteErr map[string]error
}

func NewStore() *Store {
	return &Store{
		employees:          map[string]employee.Employee{},
		holidays:           map[string]calendar.Holiday{},
		overtime:           map[string]overtime.Request{},
		attendance:         map[string]attendance.Record{},
		leaves:             map[string]leave.Request{},
		salaries:           map[string]payroll.SalaryRecord{},
		advances:           map[string]payroll.AdvanceRequest{},
		AttendanceWriteErr: map[string]error{},
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type snapshot struct {
	employees  map[string]employee.Employee
	shift      *calendar.Shift
	holidays   map[string]calendar.Holiday
	overtime   map[string]overtime.Request
	attendance map[string]attendance.Record
	leaves     map[string]leave.Request
	config     payroll.Configuration
	salaries   map[string]payroll.SalaryRecord
	advances   map[string]payroll.AdvanceRequest
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		employees:  maps.Clone(s.employees),
		shift:      s.shift,
		holidays:   maps.Clone(s.holidays),
		overtime:   maps.Clone(s.overtime),
		attendance: maps.Clone(s.attendance),
		leaves:     maps.Clone(s.leaves),
		config:     s.config,
		salaries:   maps.Clone(s.salaries),
		advances:   maps.Clone(s.advances),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.shift = snap.shift
	s.holidays = snap.holidays
	s.overtime = snap.overtime
	s.attendance = snap.attendance
	s.leaves = snap.leaves
	s.config = snap.config
	s.salaries = snap.salaries
	s.advances = snap.advances
}

type memTxKey struct{}

type memTransactor struct {
	store *Store
	txMu  sync.Mutex
}

// Transactor serializes units of work and restores the previous state when
// fn fails. Nested calls join the outer unit.
func (s *Store) Transactor() database.Transactor {
	return &memTransactor{store: s}
}

func (t *memTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	t.txMu.Lock()
	defer t.txMu.Unlock()

	snap := t.store.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// ==========================================
// DIRECT ACCESS FOR TESTS
// ==========================================

func (s *Store) PutEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Status == "" {
		e.Status = employee.StatusActive
	}
	s.employees[e.ID] = e
	return e
}

func (s *Store) PutShift(start, end calendar.TimeOfDay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shift = &calendar.Shift{ID: newID(), StartTime: start, EndTime: end}
}

func (s *Store) PutHoliday(h calendar.Holiday) calendar.Holiday {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = newID()
	}
	s.holidays[h.ID] = h
	return h
}

func (s *Store) PutOvertime(r overtime.Request) overtime.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = newID()
	}
	s.overtime[r.ID] = r
	return r
}

func (s *Store) Overtime(id string) overtime.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overtime[id]
}

func (s *Store) PutAttendance(r attendance.Record) attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = newID()
	}
	s.attendance[r.ID] = r
	return r
}

// Attendance returns the employee's record for date, or nil.
func (s *Store) Attendance(employeeID string, date time.Time) *attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.attendance {
		if r.EmployeeID == employeeID && r.WorkDate.Equal(date) {
			return &r
		}
	}
	return nil
}

func (s *Store) AttendanceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attendance)
}

func (s *Store) PutLeave(r leave.Request) leave.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = newID()
	}
	s.leaves[r.ID] = r
	return r
}

func (s *Store) PutConfiguration(cfg payroll.Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

func (s *Store) PutSalary(r payroll.SalaryRecord) payroll.SalaryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = newID()
	}
	if r.Status == "" {
		r.Status = payroll.RecordStatusPending
	}
	s.salaries[r.ID] = r
	return r
}

func (s *Store) PutAdvance(a payroll.AdvanceRequest) payroll.AdvanceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = newID()
	}
	s.advances[a.ID] = a
	return a
}

// ==========================================
// EMPLOYEES
// ==========================================

type memEmployeeRepository struct{ s *Store }

func (s *Store) EmployeeRepository() employee.EmployeeRepository {
	return &memEmployeeRepository{s: s}
}

func (r *memEmployeeRepository) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *memEmployeeRepository) ListActive(_ context.Context) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.s.employees {
		if e.Status == employee.StatusActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memEmployeeRepository) Upsert(_ context.Context, e employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.employees {
		if existing.Code == e.Code {
			e.ID = id
			r.s.employees[id] = e
			return e, nil
		}
	}
	if e.ID == "" {
		e.ID = newID()
	}
	r.s.employees[e.ID] = e
	return e, nil
}

// ==========================================
// CALENDAR
// ==========================================

type memShiftRepository struct{ s *Store }

func (s *Store) ShiftRepository() calendar.ShiftRepository {
	return &memShiftRepository{s: s}
}

func (r *memShiftRepository) Get(_ context.Context) (*calendar.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.shift == nil {
		return nil, nil
	}
	shift := *r.s.shift
	return &shift, nil
}

func (r *memShiftRepository) Create(_ context.Context, shift calendar.Shift) (calendar.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.shift != nil {
		return calendar.Shift{}, calendar.ErrShiftAlreadyExists
	}
	shift.ID = newID()
	r.s.shift = &shift
	return shift, nil
}

func (r *memShiftRepository) Update(_ context.Context, shift calendar.Shift) (calendar.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.shift == nil {
		return calendar.Shift{}, calendar.ErrShiftNotConfigured
	}
	shift.ID = r.s.shift.ID
	r.s.shift = &shift
	return shift, nil
}

type memHolidayRepository struct{ s *Store }

func (s *Store) HolidayRepository() calendar.HolidayRepository {
	return &memHolidayRepository{s: s}
}

func (r *memHolidayRepository) Create(_ context.Context, h calendar.Holiday) (calendar.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h.ID = newID()
	r.s.holidays[h.ID] = h
	return h, nil
}

func (r *memHolidayRepository) GetByID(_ context.Context, id string) (calendar.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.holidays[id]
	if !ok {
		return calendar.Holiday{}, calendar.ErrHolidayNotFound
	}
	return h, nil
}

func (r *memHolidayRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.holidays[id]; !ok {
		return calendar.ErrHolidayNotFound
	}
	delete(r.s.holidays, id)
	return nil
}

func (r *memHolidayRepository) List(_ context.Context, filter calendar.HolidayFilter) ([]calendar.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []calendar.Holiday
	for _, h := range r.s.holidays {
		if filter.Year != nil && !h.IsAnnual && h.StartDate.Year() != *filter.Year && h.EndDate.Year() != *filter.Year {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *memHolidayRepository) ListCandidates(_ context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []calendar.Holiday
	for _, h := range r.s.holidays {
		if (h.IsAnnual && !h.StartDate.After(to)) || (!h.StartDate.After(to) && !h.EndDate.Before(from)) {
			out = append(out, h)
		}
	}
	return out, nil
}

// ==========================================
// OVERTIME
// ==========================================

type memOvertimeRepository struct{ s *Store }

func (s *Store) OvertimeRepository() overtime.OvertimeRepository {
	return &memOvertimeRepository{s: s}
}

func (r *memOvertimeRepository) Create(_ context.Context, req overtime.Request) (overtime.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.overtime {
		if o.EmployeeID == req.EmployeeID && o.Date.Equal(req.Date) && o.Status != overtime.StatusRejected {
			return overtime.Request{}, overtime.ErrActiveRequestExists
		}
	}
	req.ID = newID()
	r.s.overtime[req.ID] = req
	return req, nil
}

func (r *memOvertimeRepository) GetByID(_ context.Context, id string) (overtime.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.overtime[id]
	if !ok {
		return overtime.Request{}, overtime.ErrRequestNotFound
	}
	return o, nil
}

func (r *memOvertimeRepository) GetActiveByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*overtime.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.overtime {
		if o.EmployeeID == employeeID && o.Date.Equal(date) && o.Status != overtime.StatusRejected {
			return &o, nil
		}
	}
	return nil, nil
}

func (r *memOvertimeRepository) Update(_ context.Context, req overtime.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.overtime[req.ID]; !ok {
		return overtime.ErrRequestNotFound
	}
	r.s.overtime[req.ID] = req
	return nil
}

func (r *memOvertimeRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.overtime[id]; !ok {
		return overtime.ErrRequestNotFound
	}
	delete(r.s.overtime, id)
	return nil
}

func (r *memOvertimeRepository) List(_ context.Context, filter overtime.OvertimeFilter) ([]overtime.Request, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []overtime.Request
	for _, o := range r.s.overtime {
		if filter.EmployeeID != nil && o.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(o.Status) != *filter.Status {
			continue
		}
		if filter.DateFrom != nil && calendar.FormatDate(o.Date) < *filter.DateFrom {
			continue
		}
		if filter.DateTo != nil && calendar.FormatDate(o.Date) > *filter.DateTo {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *memOvertimeRepository) ListApprovedBetween(_ context.Context, employeeID string, from, to time.Time) ([]overtime.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []overtime.Request
	for _, o := range r.s.overtime {
		if o.EmployeeID == employeeID && o.Status == overtime.StatusApproved && !o.Date.Before(from) && !o.Date.After(to) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memOvertimeRepository) UpdateAmount(_ context.Context, id string, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.overtime[id]
	if !ok {
		return overtime.ErrRequestNotFound
	}
	o.Amount = amount
	r.s.overtime[id] = o
	return nil
}

// ==========================================
// ATTENDANCE
// ==========================================

type memAttendanceRepository struct{ s *Store }

func (s *Store) AttendanceRepository() attendance.AttendanceRepository {
	return &memAttendanceRepository{s: s}
}

// LockEmployeeDate is a no-op; the transactor already serializes work.
func (r *memAttendanceRepository) LockEmployeeDate(context.Context, string, time.Time) error {
	return nil
}

func (r *memAttendanceRepository) find(employeeID string, date time.Time) (attendance.Record, bool) {
	for _, rec := range r.s.attendance {
		if rec.EmployeeID == employeeID && rec.WorkDate.Equal(date) {
			return rec, true
		}
	}
	return attendance.Record{}, false
}

func (r *memAttendanceRepository) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.find(employeeID, date)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memAttendanceRepository) GetByID(_ context.Context, id string) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.attendance[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return rec, nil
}

var errDuplicateAttendance = errors.New("duplicate attendance record for employee and date")

func (r *memAttendanceRepository) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.AttendanceWriteErr[rec.EmployeeID]; err != nil {
		return attendance.Record{}, err
	}
	if _, ok := r.find(rec.EmployeeID, rec.WorkDate); ok {
		return attendance.Record{}, errDuplicateAttendance
	}
	rec.ID = newID()
	r.s.attendance[rec.ID] = rec
	return rec, nil
}

func (r *memAttendanceRepository) CreateIfAbsent(_ context.Context, rec attendance.Record) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.AttendanceWriteErr[rec.EmployeeID]; err != nil {
		return false, err
	}
	if _, ok := r.find(rec.EmployeeID, rec.WorkDate); ok {
		return false, nil
	}
	rec.ID = newID()
	r.s.attendance[rec.ID] = rec
	return true, nil
}

func (r *memAttendanceRepository) Update(_ context.Context, rec attendance.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.AttendanceWriteErr[rec.EmployeeID]; err != nil {
		return err
	}
	if _, ok := r.s.attendance[rec.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	r.s.attendance[rec.ID] = rec
	return nil
}

func (r *memAttendanceRepository) ListByDate(_ context.Context, date time.Time) ([]attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []attendance.Record
	for _, rec := range r.s.attendance {
		if rec.WorkDate.Equal(date) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CheckInTime, out[j].CheckInTime
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out, nil
}

func (r *memAttendanceRepository) ListOpenByDate(_ context.Context, date time.Time) ([]attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []attendance.Record
	for _, rec := range r.s.attendance {
		if rec.WorkDate.Equal(date) && rec.CheckInTime != nil && rec.CheckOutTime == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memAttendanceRepository) ListByEmployeeBetween(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []attendance.Record
	for _, rec := range r.s.attendance {
		if rec.EmployeeID == employeeID && !rec.WorkDate.Before(from) && !rec.WorkDate.After(to) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate.Before(out[j].WorkDate) })
	return out, nil
}

// ==========================================
// LEAVE
// ==========================================

type memLeaveRepository struct{ s *Store }

func (s *Store) LeaveRequestRepository() leave.LeaveRequestRepository {
	return &memLeaveRepository{s: s}
}

func (r *memLeaveRepository) Create(_ context.Context, req leave.Request) (leave.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req.ID = newID()
	r.s.leaves[req.ID] = req
	return req, nil
}

func (r *memLeaveRepository) GetByID(_ context.Context, id string) (leave.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.leaves[id]
	if !ok {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (r *memLeaveRepository) Update(_ context.Context, req leave.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leaves[req.ID]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	r.s.leaves[req.ID] = req
	return nil
}

func (r *memLeaveRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leaves[id]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	delete(r.s.leaves, id)
	return nil
}

func (r *memLeaveRepository) List(_ context.Context, filter leave.LeaveFilter) ([]leave.Request, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []leave.Request
	for _, req := range r.s.leaves {
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(req.Status) != *filter.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *memLeaveRepository) ListApprovedEmployeeIDsCovering(_ context.Context, date time.Time) (map[string]struct{}, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := map[string]struct{}{}
	for _, req := range r.s.leaves {
		if req.Status == leave.StatusApproved && req.Covers(date) {
			ids[req.EmployeeID] = struct{}{}
		}
	}
	return ids, nil
}

// ==========================================
// PAYROLL
// ==========================================

type memConfigurationRepository struct{ s *Store }

func (s *Store) ConfigurationRepository() payroll.ConfigurationRepository {
	return &memConfigurationRepository{s: s}
}

func (r *memConfigurationRepository) Get(_ context.Context) (payroll.Configuration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.config, nil
}

func (r *memConfigurationRepository) Replace(_ context.Context, cfg payroll.Configuration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.config = cfg
	return nil
}

type memSalaryRecordRepository struct{ s *Store }

func (s *Store) SalaryRecordRepository() payroll.SalaryRecordRepository {
	return &memSalaryRecordRepository{s: s}
}

func (r *memSalaryRecordRepository) LockEmployeePeriod(context.Context, string, payroll.Period) error {
	return nil
}

func (r *memSalaryRecordRepository) find(employeeID string, period payroll.Period) (payroll.SalaryRecord, bool) {
	for _, rec := range r.s.salaries {
		if rec.EmployeeID == employeeID && rec.PeriodMonth == period.Month && rec.PeriodYear == period.Year {
			return rec, true
		}
	}
	return payroll.SalaryRecord{}, false
}

func (r *memSalaryRecordRepository) GetByEmployeePeriod(_ context.Context, employeeID string, period payroll.Period) (*payroll.SalaryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.find(employeeID, period)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memSalaryRecordRepository) GetByID(_ context.Context, id string) (payroll.SalaryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.salaries[id]
	if !ok {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	return rec, nil
}

func (r *memSalaryRecordRepository) Replace(_ context.Context, rec payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if old, ok := r.find(rec.EmployeeID, payroll.Period{Month: rec.PeriodMonth, Year: rec.PeriodYear}); ok {
		delete(r.s.salaries, old.ID)
	}
	rec.ID = newID()
	r.s.salaries[rec.ID] = rec
	return rec, nil
}

func (r *memSalaryRecordRepository) ListByPeriod(_ context.Context, period payroll.Period) ([]payroll.SalaryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.SalaryRecord
	for _, rec := range r.s.salaries {
		if rec.PeriodMonth == period.Month && rec.PeriodYear == period.Year {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (r *memSalaryRecordRepository) MarkPaid(_ context.Context, id string, paidAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.salaries[id]
	if !ok {
		return payroll.ErrSalaryRecordNotFound
	}
	if rec.Status != payroll.RecordStatusPending {
		return payroll.ErrSalaryRecordPaid
	}
	rec.Status = payroll.RecordStatusPaid
	rec.PaidAt = &paidAt
	r.s.salaries[id] = rec
	return nil
}

type memAdvanceRepository struct{ s *Store }

func (s *Store) AdvanceRepository() payroll.AdvanceRepository {
	return &memAdvanceRepository{s: s}
}

func (r *memAdvanceRepository) Create(_ context.Context, a payroll.AdvanceRequest) (payroll.AdvanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = newID()
	r.s.advances[a.ID] = a
	return a, nil
}

func (r *memAdvanceRepository) GetByID(_ context.Context, id string) (payroll.AdvanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.advances[id]
	if !ok {
		return payroll.AdvanceRequest{}, payroll.ErrAdvanceNotFound
	}
	return a, nil
}

func (r *memAdvanceRepository) Update(_ context.Context, a payroll.AdvanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.advances[a.ID]; !ok {
		return payroll.ErrAdvanceNotFound
	}
	r.s.advances[a.ID] = a
	return nil
}

func (r *memAdvanceRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.advances[id]; !ok {
		return payroll.ErrAdvanceNotFound
	}
	delete(r.s.advances, id)
	return nil
}

func (r *memAdvanceRepository) List(_ context.Context, filter payroll.AdvanceFilter) ([]payroll.AdvanceRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.AdvanceRequest
	for _, a := range r.s.advances {
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(a.Status) != *filter.Status {
			continue
		}
		if filter.Month != nil && a.Month != *filter.Month {
			continue
		}
		if filter.Year != nil && a.Year != *filter.Year {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *memAdvanceRepository) SumByEmployeePeriod(_ context.Context, employeeID string, period payroll.Period, statuses ...payroll.AdvanceStatus) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, a := range r.s.advances {
		if a.EmployeeID == employeeID && a.Month == period.Month && a.Year == period.Year && slices.Contains(statuses, a.Status) {
			total = total.Add(a.Amount)
		}
	}
	return total, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}
