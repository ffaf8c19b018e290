package domain

// Inquiry - заявка по объекту или общий вопрос с формы обратной связи.
type Inquiry struct {
	Name       string `validate:"required,min=2,max=100"`
	Email      string `validate:"required_without=Mobile,omitempty,email"`
	Mobile     string `validate:"required_without=Email,omitempty,e164"`
	Message    string `validate:"required,min=10,max=2000"`
	PropertyID int64  `validate:"gte=0"`
}

// InquiryReceipt - подтверждение приема заявки.
type InquiryReceipt struct {
	ID     string
	Status string
}
