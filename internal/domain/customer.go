package domain

// Customer — покупатель. Email уникален среди всех клиентов; CPF
// (бразильский налоговый идентификатор) опционален, но если задан —
// это строка ровно из 11 цифр.
type Customer struct {
	ID    string
	Name  string
	Email string
	CPF   string
}

// ValidateInvariants проверяет обязательные поля и формат CPF.
func (c *Customer) ValidateInvariants() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if c.Email == "" {
		errs = append(errs, ErrEmailRequired)
	}
	if c.CPF != "" && !ValidCPF(c.CPF) {
		errs = append(errs, ErrInvalidCPF)
	}

	return errs
}

// ValidCPF проверяет, что строка состоит ровно из 11 цифр.
// Разделители ("." и "-") должен убрать вызывающий ввод.
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	for _, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
