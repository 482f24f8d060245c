package game

// RateTable mapeia tipo de acerto para o multiplicador de prêmio por peso
// apostado. A tabela é injetada (vem de configuração persistida), não é
// constante do código.
type RateTable map[string]int64

// DefaultRateTable retorna a tabela de prêmios padrão do jogo:
// straight paga 4500x e rambolito 750x o valor apostado.
func DefaultRateTable() RateTable {
	return RateTable{
		WinTypeStraight:  4500,
		WinTypeRambolito: 750,
	}
}

// Prize calcula o prêmio em centavos para um tipo de acerto e valor apostado.
// Tipo desconhecido paga zero. Aritmética inteira em centavos, sem float.
func (t RateTable) Prize(winType string, stakeCentavos int64) int64 {
	return t[winType] * stakeCentavos
}
