package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	type input struct {
		raw map[string]any
	}

	type expected struct {
		isNil  bool
		hasErr bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "nil schema returns nil",
			input:    input{raw: nil},
			expected: expected{isNil: true},
		},
		{
			name: "valid schema compiles",
			input: input{
				raw: Object(map[string]*Property{
					"origin":      String("Origin airport code"),
					"destination": String("Destination airport code"),
				}, "origin", "destination"),
			},
			expected: expected{},
		},
		{
			name: "invalid schema fails to compile",
			input: input{
				raw: map[string]any{"type": 42},
			},
			expected: expected{hasErr: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Compile(tt.input.raw)

			if tt.expected.hasErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.expected.isNil {
				assert.Nil(t, s)
			} else {
				require.NotNil(t, s)
				assert.NotNil(t, s.Raw())
			}
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	bookSchema := Object(map[string]*Property{
		"flight_id": Integer("The flight's unique id"),
		"seat_type": String("Seat class to book"),
		"num_seats": Integer("Number of seats").Min(1),
	}, "flight_id", "seat_type", "num_seats")

	type input struct {
		data map[string]any
	}

	type expected struct {
		hasErr bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "valid arguments pass",
			input: input{data: map[string]any{
				"flight_id": 42,
				"seat_type": "economy",
				"num_seats": 2,
			}},
			expected: expected{},
		},
		{
			name: "missing required field fails",
			input: input{data: map[string]any{
				"flight_id": 42,
				"seat_type": "economy",
			}},
			expected: expected{hasErr: true},
		},
		{
			name: "wrong type fails",
			input: input{data: map[string]any{
				"flight_id": "forty-two",
				"seat_type": "economy",
				"num_seats": 1,
			}},
			expected: expected{hasErr: true},
		},
		{
			name: "below minimum fails",
			input: input{data: map[string]any{
				"flight_id": 42,
				"seat_type": "economy",
				"num_seats": 0,
			}},
			expected: expected{hasErr: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MustCompile(bookSchema)
			err := s.Validate(tt.input.data)

			if tt.expected.hasErr {
				require.Error(t, err)
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchema_Validate_NilSchema(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.Validate(map[string]any{"anything": "goes"}))
}

func TestProperty_Builders(t *testing.T) {
	raw := Object(map[string]*Property{
		"seat_type":     String("Seat class").Enum("economy", "business", "first_class"),
		"flight_number": String("Flight number").Pattern(`^[A-Z]{2}[0-9]{3}$`),
		"num_seats":     Integer("Seats").Min(1).Max(10).Default(1),
		"max_cost":      Number("Upper cost bound"),
		"refundable":    Boolean("Refundable fare only"),
	})

	props := raw["properties"].(map[string]any)

	seat := props["seat_type"].(map[string]any)
	assert.Equal(t, "string", seat["type"])
	assert.Len(t, seat["enum"], 3)

	num := props["num_seats"].(map[string]any)
	assert.Equal(t, float64(1), num["minimum"])
	assert.Equal(t, float64(10), num["maximum"])
	assert.Equal(t, 1, num["default"])

	fn := props["flight_number"].(map[string]any)
	assert.Equal(t, `^[A-Z]{2}[0-9]{3}$`, fn["pattern"])

	// The whole thing must still be a compilable schema.
	_, err := Compile(raw)
	assert.NoError(t, err)
}
