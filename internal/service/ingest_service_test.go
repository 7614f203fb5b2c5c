package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gridpulse/internal/models"
	"gridpulse/internal/repository"
)

func newIngestService(t *testing.T) (*IngestService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	svc := NewIngestService(
		repository.NewTxRunner(db),
		repository.NewCurrentStateRepository(db),
		repository.NewHistoryRepository(db),
		zap.NewNop(),
	)
	return svc, mock
}

func validMeterInput() MeterReadingInput {
	return MeterReadingInput{
		DeviceID:      "M-1",
		KWhConsumedAC: 125.5432,
		Voltage:       240.5,
		Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func validVehicleInput() VehicleReadingInput {
	return VehicleReadingInput{
		DeviceID:       "V-1",
		SoC:            85.5,
		KWhDeliveredDC: 105.2134,
		BatteryTemp:    32.5,
		Timestamp:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestIngestMeter_CommitsStateAndHistoryTogether(t *testing.T) {
	svc, mock := newIngestService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO meter_current_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO meter_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := svc.IngestMeter(context.Background(), validMeterInput())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestVehicle_CommitsStateAndHistoryTogether(t *testing.T) {
	svc, mock := newIngestService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vehicle_current_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO vehicle_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := svc.IngestVehicle(context.Background(), validVehicleInput())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestMeter_RollsBackWhenHistoryAppendFails(t *testing.T) {
	svc, mock := newIngestService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO meter_current_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO meter_history").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := svc.IngestMeter(context.Background(), validMeterInput())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "ingest meter batch", perr.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestVehicle_RollsBackWhenStateUpsertFails(t *testing.T) {
	svc, mock := newIngestService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vehicle_current_state").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := svc.IngestVehicle(context.Background(), validVehicleInput())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestMeter_ValidationFailuresTouchNothing(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*MeterReadingInput)
		field  string
	}{
		{"empty device id", func(in *MeterReadingInput) { in.DeviceID = "  " }, "device_id"},
		{"negative energy", func(in *MeterReadingInput) { in.KWhConsumedAC = -0.1 }, "kwh_consumed_ac"},
		{"negative voltage", func(in *MeterReadingInput) { in.Voltage = -230 }, "voltage"},
		{"zero timestamp", func(in *MeterReadingInput) { in.Timestamp = time.Time{} }, "timestamp"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mock := newIngestService(t)

			input := validMeterInput()
			tc.mutate(&input)

			err := svc.IngestMeter(context.Background(), input)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			// No Begin/Exec expectations were registered: any storage call fails the test.
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIngestVehicle_ValidationFailures(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*VehicleReadingInput)
		field  string
	}{
		{"soc above 100", func(in *VehicleReadingInput) { in.SoC = 100.1 }, "soc"},
		{"soc below 0", func(in *VehicleReadingInput) { in.SoC = -1 }, "soc"},
		{"negative energy", func(in *VehicleReadingInput) { in.KWhDeliveredDC = -5 }, "kwh_delivered_dc"},
		{"empty device id", func(in *VehicleReadingInput) { in.DeviceID = "" }, "device_id"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mock := newIngestService(t)

			input := validVehicleInput()
			tc.mutate(&input)

			err := svc.IngestVehicle(context.Background(), input)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIngestMeterBatch_AllOrNothingOnValidationFailure(t *testing.T) {
	svc, mock := newIngestService(t)

	inputs := make([]MeterReadingInput, 0, 101)
	for i := 0; i < 100; i++ {
		in := validMeterInput()
		in.DeviceID = "M-" + string(rune('A'+i%26))
		inputs = append(inputs, in)
	}
	bad := validMeterInput()
	bad.Voltage = -240
	inputs = append(inputs, bad)

	err := svc.IngestMeterBatch(context.Background(), inputs)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "records[100].voltage", verr.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestMeterBatch_EmptyBatchRejected(t *testing.T) {
	svc, mock := newIngestService(t)

	err := svc.IngestMeterBatch(context.Background(), nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "records", verr.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestVehicleBatch_SingleTransactionForWholeBatch(t *testing.T) {
	svc, mock := newIngestService(t)

	base := validVehicleInput()
	inputs := make([]VehicleReadingInput, 10)
	for i := range inputs {
		in := base
		in.Timestamp = base.Timestamp.Add(time.Duration(i) * time.Minute)
		inputs[i] = in
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vehicle_current_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO vehicle_history").
		WillReturnResult(sqlmock.NewResult(10, 10))
	mock.ExpectCommit()

	err := svc.IngestVehicleBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestVehicleBatch_RollsBackWholeBatchOnStorageFailure(t *testing.T) {
	svc, mock := newIngestService(t)

	inputs := []VehicleReadingInput{validVehicleInput(), validVehicleInput()}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vehicle_current_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO vehicle_history").
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := svc.IngestVehicleBatch(context.Background(), inputs)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestMeterPerDevice_CollapsesToLastInBatchOrder(t *testing.T) {
	first := validMeterInput().toReading()
	second := first
	second.KWhConsumedAC = 200
	second.RecordedAt = first.RecordedAt.Add(time.Minute)
	other := first
	other.DeviceID = "M-2"

	collapsed := latestMeterPerDevice([]models.MeterReading{first, other, second})

	require.Len(t, collapsed, 2)
	assert.Equal(t, "M-1", collapsed[0].DeviceID)
	assert.Equal(t, 200.0, collapsed[0].KWhConsumedAC)
	assert.Equal(t, "M-2", collapsed[1].DeviceID)
}
