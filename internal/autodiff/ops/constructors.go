package ops

// Constructors for every op, in the form the graph builder consumes.
var (
	Addition       = Binary(NewAddOp)
	Subtraction    = Binary(NewSubOp)
	Multiplication = Binary(NewMulOp)
	Division       = Binary(NewDivOp)
	MSE            = Binary(NewMSEOp)
	Dot            = Binary(NewDotOp)
	MatMul         = Binary(NewMatMulOp)
	Sigmoid        = Unary(NewSigmoidOp)
	Sin            = Unary(NewSinOp)
	Cos            = Unary(NewCosOp)
)
