package models

type TransactionTypeID uint32
