package roomhandler

type CreateRoomBody struct {
	Name string `json:"name" binding:"required" example:"party"`
} // @name CreateRoomRequest

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
