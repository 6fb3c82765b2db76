package models

type CardTypeID uint32
