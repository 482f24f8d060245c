package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		bet         Bet
		winning     []string
		wantWinning bool
		wantType    string
		wantMatched string
	}{
		{
			name:        "straight exato",
			bet:         Bet{Combination: "123", BetType: BetTypeStandard},
			winning:     []string{"123"},
			wantWinning: true,
			wantType:    WinTypeStraight,
			wantMatched: "123",
		},
		{
			name:        "standard não ganha por permutação",
			bet:         Bet{Combination: "123", BetType: BetTypeStandard},
			winning:     []string{"321"},
			wantWinning: false,
			wantType:    WinTypeNone,
		},
		{
			name:        "rambolito ganha por permutação",
			bet:         Bet{Combination: "123", BetType: BetTypeRambolito},
			winning:     []string{"321"},
			wantWinning: true,
			wantType:    WinTypeRambolito,
			wantMatched: "321",
		},
		{
			name:        "rambolito exige multiconjunto igual",
			bet:         Bet{Combination: "112", BetType: BetTypeRambolito},
			winning:     []string{"121"},
			wantWinning: true,
			wantType:    WinTypeRambolito,
			wantMatched: "121",
		},
		{
			name:        "dígitos repetidos diferentes não casam",
			bet:         Bet{Combination: "112", BetType: BetTypeRambolito},
			winning:     []string{"122"},
			wantWinning: false,
			wantType:    WinTypeNone,
		},
		{
			name:        "tamanhos diferentes nunca casam",
			bet:         Bet{Combination: "12", BetType: BetTypeRambolito},
			winning:     []string{"123"},
			wantWinning: false,
			wantType:    WinTypeNone,
		},
		{
			name:        "ordem dos números sorteados decide o acerto reportado",
			bet:         Bet{Combination: "456", BetType: BetTypeRambolito},
			winning:     []string{"654", "456"},
			wantWinning: true,
			wantType:    WinTypeRambolito,
			wantMatched: "654",
		},
		{
			name:        "primeiro número que casa é o reportado",
			bet:         Bet{Combination: "456", BetType: BetTypeStandard},
			winning:     []string{"111", "456", "456"},
			wantWinning: true,
			wantType:    WinTypeStraight,
			wantMatched: "456",
		},
		{
			name:        "sem resultados não há vitória",
			bet:         Bet{Combination: "456", BetType: BetTypeRambolito},
			winning:     nil,
			wantWinning: false,
			wantType:    WinTypeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.bet, tt.winning)
			assert.Equal(t, tt.wantWinning, got.IsWinning)
			assert.Equal(t, tt.wantType, got.WinType)
			assert.Equal(t, tt.wantMatched, got.MatchedNumber)
		})
	}
}
