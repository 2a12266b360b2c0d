package utils

import "unicode"

// remove qualquer coisa que não seja dígito
func SanitizeCNPJ(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

// ValidateCNPJ espera o CNPJ já sanitizado: 14 dígitos, não todos iguais,
// e os dois dígitos verificadores corretos (módulo 11).
func ValidateCNPJ(cnpj string) bool {
	if len(cnpj) != 14 {
		return false
	}
	allEq := true
	for i := 0; i < 14; i++ {
		if cnpj[i] < '0' || cnpj[i] > '9' {
			return false
		}
		if cnpj[i] != cnpj[0] {
			allEq = false
		}
	}
	if allEq {
		return false
	}
	return checkDigit(cnpj[:12], 5) == cnpj[12] && checkDigit(cnpj[:13], 6) == cnpj[13]
}

// pesos: começa em `weight`, desce até 2 e volta para 9
func checkDigit(base string, weight int) byte {
	sum := 0
	for i := 0; i < len(base); i++ {
		sum += int(base[i]-'0') * weight
		if weight == 2 {
			weight = 9
		} else {
			weight--
		}
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte('0' + 11 - rest)
}

// FormatCNPJ agrupa como NN.NNN.NNN/NNNN-NN; entrada fora do padrão volta sem mudança.
func FormatCNPJ(s string) string {
	d := SanitizeCNPJ(s)
	if len(d) != 14 {
		return s
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}
