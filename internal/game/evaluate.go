package game

import "sort"

// Tipos de aposta aceitos nos bilhetes.
const (
	BetTypeStandard  = "standard"
	BetTypeRambolito = "rambolito"
)

// Tipos de acerto retornados pela avaliação.
const (
	WinTypeStraight  = "straight"
	WinTypeRambolito = "rambolito"
	WinTypeNone      = "none"
)

// Bet é a fração mínima de um bilhete avaliada contra os números sorteados.
type Bet struct {
	Combination    string
	BetType        string // "standard" | "rambolito"
	AmountCentavos int64
}

// MatchResult descreve o resultado da avaliação de uma aposta.
type MatchResult struct {
	IsWinning     bool
	WinType       string // "straight" | "rambolito" | "none"
	MatchedNumber string
}

// Evaluate compara uma aposta com os números vencedores de um sorteio.
// Igualdade exata vence como "straight" e encerra a busca (o primeiro número
// que casar é o reportado). Permutação só vale para apostas rambolito.
func Evaluate(bet Bet, winningNumbers []string) MatchResult {
	for _, winning := range winningNumbers {
		if bet.Combination == winning {
			return MatchResult{IsWinning: true, WinType: WinTypeStraight, MatchedNumber: winning}
		}

		if bet.BetType == BetTypeRambolito && isPermutation(bet.Combination, winning) {
			return MatchResult{IsWinning: true, WinType: WinTypeRambolito, MatchedNumber: winning}
		}
	}

	return MatchResult{IsWinning: false, WinType: WinTypeNone}
}

// isPermutation verifica se duas combinações têm os mesmos dígitos
// (igualdade de multiconjunto). Tamanhos diferentes nunca são permutação.
func isPermutation(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return sortDigits(a) == sortDigits(b)
}

func sortDigits(s string) string {
	d := []byte(s)
	sort.Slice(d, func(i, j int) bool { return d[i] < d[j] })
	return string(d)
}
