package domain

type Review struct {
	ReviewID  ID     `json:"review_id"`
	ProductID ID     `json:"product_id"`
	OrderID   ID     `json:"order_id"`
	UserName  string `json:"user_name,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ReviewInput struct {
	ProductID ID     `json:"product_id"`
	OrderID   ID     `json:"order_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

func (in ReviewInput) Validate() error {
	if in.Rating < 1 || in.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
